package codegen

import (
	"errors"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
)

// Resource describes a mock endpoint for snippet generation, decoupled from
// the storage model.
type Resource struct {
	ProjectID string
	Name      string
	Version   string
	Template  []byte

	AllowGet     bool
	AllowGetByID bool
	AllowPost    bool
	AllowPut     bool
	AllowDelete  bool
}

// URL returns the resource's collection URL under the given base.
func (r Resource) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/api/" + r.ProjectID + "/" + r.Version + "/" + r.Name
}

// Frameworks supported by Snippet.
const (
	FrameworkExpress = "express"
	FrameworkFastAPI = "fastapi"
	FrameworkNextJS  = "nextjs"
)

// ErrUnknownFramework rejects framework names outside the supported set.
var ErrUnknownFramework = errors.New("unknown framework")

// snippetData feeds the per-framework templates.
type snippetData struct {
	URL       string
	Name      string
	ClassName string
	VarName   string
	FuncName  string

	AllowGet     bool
	AllowGetByID bool
	AllowPost    bool
	AllowPut     bool
	AllowDelete  bool
}

// Snippet renders a ready-to-paste client snippet for the given framework.
func Snippet(framework string, res Resource, baseURL string) (string, error) {
	var tmpl *template.Template
	switch framework {
	case FrameworkExpress:
		tmpl = expressTemplate
	case FrameworkFastAPI:
		tmpl = fastapiTemplate
	case FrameworkNextJS:
		tmpl = nextjsTemplate
	default:
		return "", ErrUnknownFramework
	}

	data := snippetData{
		URL:          res.URL(baseURL),
		Name:         res.Name,
		ClassName:    strcase.ToCamel(res.Name),
		VarName:      strcase.ToLowerCamel(res.Name),
		FuncName:     strcase.ToSnake(res.Name),
		AllowGet:     res.AllowGet,
		AllowGetByID: res.AllowGetByID,
		AllowPost:    res.AllowPost,
		AllowPut:     res.AllowPut,
		AllowDelete:  res.AllowDelete,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
