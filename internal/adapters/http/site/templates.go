package site

import (
	"fmt"
	"html/template"
	"strings"

	service "github.com/padelrpm/ranking/internal/app"
	"github.com/padelrpm/ranking/internal/domain/movement"
)

type homePage struct {
	Title   string
	Players int
}

type generalPage struct {
	Title string
	View  service.GeneralView
}

type categoryPageData struct {
	Title    string
	BasePath string
	Chips    []CatChip
	View     service.CategoryView
}

var funcs = template.FuncMap{
	"arrow": func(mv movement.Flag) string {
		switch mv {
		case movement.Up:
			return "▲"
		case movement.Down:
			return "▼"
		case movement.Same:
			return "="
		default:
			return ""
		}
	},
	"arrowClass": func(mv movement.Flag) string {
		switch mv {
		case movement.Up:
			return "up"
		case movement.Down:
			return "down"
		case movement.Same:
			return "same"
		default:
			return "none"
		}
	},
	// Levels render with a comma decimal, matching the worksheet locale.
	"level": func(v float64) string {
		return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
	},
}

const sharedHTML = `
{{define "head"}}<!doctype html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<link rel="stylesheet" href="/static/style.css">
</head>{{end}}

{{define "nav"}}<nav>
<a href="/">Inicio</a>
<a href="/ranking">General</a>
<a href="/ranking-masculino">Masculino</a>
<a href="/ranking-femenino">Femenino</a>
</nav>{{end}}

{{define "tablehead"}}<tr><th>#</th><th></th><th>Jugador</th><th>Nivel</th><th>Categoría</th></tr>{{end}}

{{define "rows"}}{{range .}}<tr>
<td>{{.Pos}}</td>
<td class="mv {{arrowClass .Movement}}">{{arrow .Movement}}</td>
<td>{{.Name}}</td>
<td>{{level .Level}}</td>
<td>{{.OfficialCategory}}</td>
</tr>{{end}}{{end}}
`

const homeHTML = `{{template "head" .Title}}
<body>
{{template "nav"}}
<main class="home">
<h1>Ranking RPM</h1>
<p>Ranking de pádel ordenado por nivel de sesión. {{.Players}} jugadores con nivel registrado.</p>
<ul>
<li><a href="/ranking">Ranking general</a></li>
<li><a href="/ranking-masculino">Ranking masculino</a></li>
<li><a href="/ranking-femenino">Ranking femenino</a></li>
<li><a href="/api/sesiones">Sesiones (JSON)</a></li>
</ul>
</main>
</body>
</html>`

const generalHTML = `{{template "head" .Title}}
<body>
{{template "nav"}}
<main>
<h1>{{.Title}}</h1>
{{with .View}}
<form method="get" class="filters">
<select name="genero">
<option value="">Todos</option>
<option value="M" {{if eq .Gender "M"}}selected{{end}}>Masculino</option>
<option value="F" {{if eq .Gender "F"}}selected{{end}}>Femenino</option>
</select>
<select name="cat">
<option value="">Todas las categorías</option>
{{$cur := .Category}}{{range .Categories}}<option value="{{.}}" {{if eq . $cur}}selected{{end}}>{{.}}</option>
{{end}}</select>
<button type="submit">Filtrar</button>
</form>
{{if .Rows}}<table>{{template "tablehead"}}{{template "rows" .Rows}}</table>
{{else}}<p class="empty">Sin sesiones registradas.</p>{{end}}
{{end}}
</main>
</body>
</html>`

const categoryHTML = `{{template "head" .Title}}
<body>
{{template "nav"}}
<main>
<h1>{{.Title}}</h1>
<div class="chips">
{{$base := .BasePath}}{{$cur := .View.CurrentCat}}{{range .Chips}}<a class="chip{{if eq .Value $cur}} active{{end}}" href="{{$base}}?cat={{.Value}}">{{.Label}} <span class="count">{{.Count}}</span></a>
{{end}}</div>
{{if .View.Rows}}<table>{{template "tablehead"}}{{template "rows" .View.Rows}}</table>
{{else}}<p class="empty">Sin sesiones en esta categoría.</p>{{end}}
</main>
</body>
</html>`

var (
	shared       = template.Must(template.New("shared").Funcs(funcs).Parse(sharedHTML))
	homeTmpl     = mustPage("home", homeHTML)
	rankingTmpl  = mustPage("ranking", generalHTML)
	categoryTmpl = mustPage("category", categoryHTML)
)

// mustPage attaches a page body to a clone of the shared partials.
func mustPage(name, body string) *template.Template {
	t := template.Must(shared.Clone())
	return template.Must(t.New(name).Parse(body))
}
