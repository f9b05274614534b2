package email

import (
	"embed"
	"html/template"
	"os"
	"path/filepath"
	texttpl "text/template"
)

//go:embed templates/*.html templates/*.txt
var defaultFS embed.FS

// Nombres de template usados en métricas y logs.
const (
	TemplateReset            = "reset_password"
	TemplateVerify           = "verify_email"
	TemplateBusinessApproved = "business_approved"
)

// Templates agrupa los pares HTML/texto de cada correo transaccional.
type Templates struct {
	ResetHTML    *template.Template
	ResetTXT     *texttpl.Template
	VerifyHTML   *template.Template
	VerifyTXT    *texttpl.Template
	ApprovedHTML *template.Template
	ApprovedTXT  *texttpl.Template
}

// ResetVars variables del template de reset de contraseña.
type ResetVars struct {
	UserEmail string
	Link      string
	TTL       string
}

// VerifyVars variables del template de verificación de email.
type VerifyVars struct {
	UserEmail string
	Link      string
	TTL       string
}

// ApprovedVars variables del template de negocio aprobado.
type ApprovedVars struct {
	UserEmail    string
	BusinessName string
	Link         string
}

// DefaultTemplates parsea los templates embebidos.
func DefaultTemplates() (*Templates, error) {
	read := func(name string) (string, error) {
		b, err := defaultFS.ReadFile("templates/" + name)
		return string(b), err
	}
	return parseAll(read)
}

// LoadTemplates carga los templates desde un directorio. Los seis
// archivos deben existir: reset_password, verify_email y
// business_approved, cada uno en .html y .txt.
func LoadTemplates(dir string) (*Templates, error) {
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		return string(b), err
	}
	return parseAll(read)
}

func parseAll(read func(name string) (string, error)) (*Templates, error) {
	rh, err := read("reset_password.html")
	if err != nil {
		return nil, err
	}
	rt, err := read("reset_password.txt")
	if err != nil {
		return nil, err
	}
	vh, err := read("verify_email.html")
	if err != nil {
		return nil, err
	}
	vt, err := read("verify_email.txt")
	if err != nil {
		return nil, err
	}
	ah, err := read("business_approved.html")
	if err != nil {
		return nil, err
	}
	at, err := read("business_approved.txt")
	if err != nil {
		return nil, err
	}

	rhT, err := template.New("reset_html").Parse(rh)
	if err != nil {
		return nil, err
	}
	rtT, err := texttpl.New("reset_txt").Parse(rt)
	if err != nil {
		return nil, err
	}
	vhT, err := template.New("verify_html").Parse(vh)
	if err != nil {
		return nil, err
	}
	vtT, err := texttpl.New("verify_txt").Parse(vt)
	if err != nil {
		return nil, err
	}
	ahT, err := template.New("approved_html").Parse(ah)
	if err != nil {
		return nil, err
	}
	atT, err := texttpl.New("approved_txt").Parse(at)
	if err != nil {
		return nil, err
	}

	return &Templates{
		ResetHTML:    rhT,
		ResetTXT:     rtT,
		VerifyHTML:   vhT,
		VerifyTXT:    vtT,
		ApprovedHTML: ahT,
		ApprovedTXT:  atT,
	}, nil
}
