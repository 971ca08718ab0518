package public

import (
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/events", pbl.Events)
	app.Handle(http.MethodPost, "", "/transactions/new", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, "", "/transactions/pending", pbl.Mempool)
	app.Handle(http.MethodGet, "", "/mine", pbl.Mine)
	app.Handle(http.MethodGet, "", "/chain", pbl.Chain)
}
