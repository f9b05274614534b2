// Command madidictl son tareas operativas del marketplace: aprobar
// dueños de negocio, migrar el esquema y sembrar datos de demo. Habla
// directo con Postgres, no con el API.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Peekay0523/MadidiMarket/internal/config"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/email"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
	adminsvc "github.com/Peekay0523/MadidiMarket/internal/service/admin"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
	migrations "github.com/Peekay0523/MadidiMarket/migrations/postgres"
)

func main() {
	var (
		cfgPath string
		envFile string

		cfg   *config.Config
		store *pg.Store
	)

	root := &cobra.Command{
		Use:           "madidictl",
		Short:         "Tareas operativas de Madidi Market",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(envFile)
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "madidictl"})

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			store, err = pg.New(ctx, cfg.Storage.DSN, pg.Config{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				store.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "ruta del config.yaml")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "archivo .env opcional")

	// approve-business: lista pendientes o aprueba por email.
	var (
		listPending bool
		ownerEmail  string
		noEmail     bool
	)
	approveCmd := &cobra.Command{
		Use:   "approve-business",
		Short: "Aprobar dueños de negocio pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if listPending {
				pending, err := store.ListPendingOwners(ctx)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Println("sin dueños pendientes")
					return nil
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EMAIL\tNOMBRE\tNEGOCIO\tREGISTRADO")
				for _, p := range pending {
					biz := p.BusinessName
					if biz == "" {
						biz = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						p.User.Email, p.User.FullName, biz,
						p.User.CreatedAt.Format("2006-01-02"))
				}
				return tw.Flush()
			}

			if ownerEmail == "" {
				return fmt.Errorf("falta --email (o usar --list)")
			}
			u, err := store.GetUserByEmail(ctx, ownerEmail)
			if err != nil {
				if domain.IsNotFound(err) {
					return fmt.Errorf("no existe una cuenta con email %s", ownerEmail)
				}
				return err
			}
			if u.Role != domain.RoleBusinessOwner {
				return fmt.Errorf("%s no es dueño de negocio (rol %s)", ownerEmail, u.Role)
			}
			if u.Approved {
				fmt.Printf("%s ya estaba aprobado\n", ownerEmail)
				return nil
			}

			// Mailer sólo si vamos a notificar; el SMTP puede no estar
			// configurado en la máquina del operador.
			var mailer adminsvc.Mailer
			if !noEmail {
				svc, err := email.NewService(email.ServiceConfig{
					Sender: email.FromConfig(email.SMTPConfig{
						Host:     cfg.SMTP.Host,
						Port:     cfg.SMTP.Port,
						Username: cfg.SMTP.Username,
						Password: config.NormalizeAppPassword(cfg.SMTP.Password),
						From:     cfg.SMTP.From,
						TLSMode:  cfg.SMTP.TLS,
					}),
					BaseURL: cfg.Email.BaseURL,
				})
				if err != nil {
					return fmt.Errorf("email: %w", err)
				}
				mailer = svc
			}

			admin := adminsvc.New(adminsvc.Deps{Store: store, Mailer: mailer})
			if _, err := admin.ApproveBusinessOwner(ctx, "madidictl", u.ID, !noEmail); err != nil {
				return err
			}
			fmt.Printf("aprobado: %s\n", ownerEmail)
			if !noEmail {
				// El envío corre en background; darle una ventana antes de
				// cerrar el proceso.
				time.Sleep(2 * time.Second)
			}
			return nil
		},
	}
	approveCmd.Flags().BoolVar(&listPending, "list", false, "listar dueños pendientes y salir")
	approveCmd.Flags().StringVar(&ownerEmail, "email", "", "email del dueño a aprobar")
	approveCmd.Flags().BoolVar(&noEmail, "no-email", false, "aprobar sin enviar correo de aviso")
	root.AddCommand(approveCmd)

	// migrate up|down
	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Aplicar o revertir las migraciones del esquema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			switch action {
			case "up":
				if err := store.RunMigrations(cmd.Context(), migrations.FS, migrations.Dir); err != nil {
					return err
				}
				fmt.Println("migraciones aplicadas")
			case "down":
				if err := store.RunMigrationsDown(cmd.Context(), migrations.FS, migrations.Dir); err != nil {
					return err
				}
				fmt.Println("migraciones revertidas")
			default:
				return fmt.Errorf("acción desconocida %q (up|down)", action)
			}
			return nil
		},
	}
	root.AddCommand(migrateCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Sembrar datos de demo (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), store)
		},
	}
	root.AddCommand(seedCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "madidictl:", err)
		os.Exit(1)
	}
}

// cents evita repetir conversiones en los datos de demo.
func cents(v int64) domain.Cents { return domain.Cents(v) }

// seed crea un admin, un dueño aprobado con negocio y catálogo, y las
// categorías base. Corre las veces que haga falta: lo que ya existe se
// salta por email o por nombre.
func seed(ctx context.Context, store *pg.Store) error {
	seedUser := func(emailAddr, name, plain string, role domain.Role, approved bool) (*domain.User, error) {
		if u, err := store.GetUserByEmail(ctx, emailAddr); err == nil {
			fmt.Printf("ya existe: %s\n", emailAddr)
			return u, nil
		} else if !domain.IsNotFound(err) {
			return nil, err
		}
		hash, err := password.Hash(password.Default, plain)
		if err != nil {
			return nil, err
		}
		u := &domain.User{
			Email:         emailAddr,
			PasswordHash:  hash,
			FullName:      name,
			Role:          role,
			Approved:      approved,
			EmailVerified: true,
		}
		if err := store.CreateUser(ctx, u); err != nil {
			return nil, err
		}
		fmt.Printf("creado: %s (%s)\n", emailAddr, role)
		return u, nil
	}

	if _, err := seedUser("admin@madidimarket.com", "Admin Madidi", "Admin123!", domain.RoleAdmin, true); err != nil {
		return err
	}
	owner, err := seedUser("dona.rosa@madidimarket.com", "Rosa Quispe", "Owner123!", domain.RoleBusinessOwner, true)
	if err != nil {
		return err
	}
	if _, err := seedUser("cliente@madidimarket.com", "Carlos Mamani", "Client123!", domain.RoleClient, true); err != nil {
		return err
	}

	// Categorías base, por nombre.
	existing, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}
	for _, c := range []domain.Category{
		{Name: "Abarrotes", Description: "Alimentos y productos de despensa"},
		{Name: "Comida", Description: "Platos preparados y antojitos"},
		{Name: "Artesanía", Description: "Tejidos y artesanía local"},
		{Name: "Servicios del hogar", Description: "Reparaciones y mantenimiento"},
	} {
		if _, ok := byName[c.Name]; ok {
			continue
		}
		c := c
		if err := store.CreateCategory(ctx, &c); err != nil {
			return err
		}
		byName[c.Name] = c.ID
		fmt.Printf("categoría: %s\n", c.Name)
	}

	// Negocio del dueño de demo, con un catálogo chico.
	biz, err := store.GetBusinessByOwner(ctx, owner.ID)
	if domain.IsNotFound(err) {
		biz = &domain.Business{
			OwnerID:     owner.ID,
			Name:        "Tienda Doña Rosa",
			Description: "Abarrotes y comida casera en el centro de Madidi",
			Address:     "Calle Comercio 123",
			Phone:       "+591 7000 0000",
		}
		if err := store.CreateBusiness(ctx, biz); err != nil {
			return err
		}
		fmt.Printf("negocio: %s\n", biz.Name)
	} else if err != nil {
		return err
	}

	prods, _, err := store.ListProducts(ctx, pg.ProductFilter{BusinessID: biz.ID, Limit: 1})
	if err != nil {
		return err
	}
	if len(prods) == 0 {
		abarrotes := byName["Abarrotes"]
		for _, p := range []domain.Product{
			{Name: "Arroz 1kg", Description: "Arroz grano de oro", PriceCents: cents(1200), StockQuantity: 40},
			{Name: "Aceite 900ml", Description: "Aceite vegetal", PriceCents: cents(1550), StockQuantity: 25},
			{Name: "Azúcar 1kg", Description: "Azúcar blanca", PriceCents: cents(900), StockQuantity: 60},
		} {
			p := p
			p.BusinessID = biz.ID
			p.CategoryID = &abarrotes
			p.Available = true
			if err := store.CreateProduct(ctx, &p); err != nil {
				return err
			}
			fmt.Printf("producto: %s\n", p.Name)
		}
	}

	svcs, _, err := store.ListServices(ctx, pg.ServiceFilter{BusinessID: biz.ID, Limit: 1})
	if err != nil {
		return err
	}
	if len(svcs) == 0 {
		hogar := byName["Servicios del hogar"]
		precio := cents(5000)
		v := domain.Service{
			BusinessID:  biz.ID,
			CategoryID:  &hogar,
			Name:        "Entrega a domicilio",
			Description: "Entrega en el día dentro del centro",
			PriceCents:  &precio,
			Duration:    "1h",
			Available:   true,
		}
		if err := store.CreateService(ctx, &v); err != nil {
			return err
		}
		fmt.Printf("servicio: %s\n", v.Name)
	}

	fmt.Println("seed completo")
	return nil
}
