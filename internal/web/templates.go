package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>Start a New Game!</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div class="game" hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const boardTemplate = `<div id="board">
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <div class="next-player">{{.Status}}</div>
  <div class="game-board">
  {{range .Rows}}
    <div class="board-row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/play">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" class="square{{if .Winning}} winning-square{{end}}"{{if not .Playable}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
    </div>
  {{end}}
  </div>
  <ol class="moves">
  {{range .Moves}}
    <li>
      <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/jump">
        <input type="hidden" name="step" value="{{.Step}}">
        <button type="submit"{{if .Current}} class="highlight-listitem"{{end}}>{{.Text}}</button>
      </form>
    </li>
  {{end}}
  </ol>
  <div class="new-game">
    <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/restart">
      <button type="submit">Start a New Game!</button>
    </form>
  </div>
</div>
`

type cellView struct {
	Index    int
	Symbol   string
	Winning  bool
	Playable bool
}

// boardView is everything the board template shows, derived from one game state.
type boardView struct {
	ID     string
	Status string
	Rows   [][]cellView
	Moves  []domain.Label
	Error  string
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	s := gs.Session
	b := s.Active()
	result := domain.Evaluate(b)

	rows := make([][]cellView, 0, 3)
	for r := 0; r < 3; r++ {
		row := make([]cellView, 0, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			row = append(row, cellView{
				Index:    i,
				Symbol:   b[i].String(),
				Winning:  result.Contains(i),
				Playable: domain.CanPlay(s, i),
			})
		}
		rows = append(rows, row)
	}
	return boardView{
		ID:     gs.ID,
		Status: domain.Status(s),
		Rows:   rows,
		Moves:  domain.Labels(s),
		Error:  errMsg,
	}
}
