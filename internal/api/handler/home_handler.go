package handler

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
        }
        .container {
            background: white;
            padding: 40px;
            border-radius: 10px;
            box-shadow: 0 10px 25px rgba(0,0,0,0.2);
            text-align: center;
            min-width: 400px;
        }
        h1 { color: #333; margin-bottom: 20px; }
        .info { background: #f0f0f0; padding: 20px; border-radius: 5px; margin: 10px 0; }
        .label { font-weight: bold; color: #667eea; }
        .value { color: #333; font-size: 1.2em; }
        .db { background: #e8f5e9; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
        <div class="info">
            <p class="label">Server Hostname:</p>
            <p class="value">{{.Hostname}}</p>
        </div>
        <div class="info">
            <p class="label">Server IP Address:</p>
            <p class="value">{{.IP}}</p>
        </div>
        <div class="info">
            <p class="label">App Status:</p>
            <p class="value">✅ Server is running!</p>
        </div>
        {{- if .ShowDatabase}}
        <div class="info db">
            <p class="label">Database (Private Subnet):</p>
            <p class="value">{{.Database}}</p>
        </div>
        {{- end}}
    </div>
</body>
</html>
`))

// Page sets the title and heading of the home page per binary.
type Page struct {
	Title   string
	Heading string
}

// HomeHandler renders the instance identity page.
type HomeHandler struct {
	page   Page
	db     *DatabaseCheck
	hosts  HostInfo
	logger *zap.Logger
}

func NewHomeHandler(page Page, db *DatabaseCheck, hosts HostInfo, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{page: page, db: db, hosts: hosts, logger: logger}
}

type homeView struct {
	Page
	Hostname     string
	IP           string
	ShowDatabase bool
	Database     string
}

// Home handles GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	id := h.hosts.Identity(r.Context())
	view := homeView{Page: h.page, Hostname: id.Hostname, IP: id.IP}
	if h.db != nil {
		view.ShowDatabase = true
		view.Database = h.db.Status(r.Context())
	}
	respondHTML(w, h.logger, homeTemplate, view)
}
