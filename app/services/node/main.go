package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/worker"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/logger"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:5000"`
		}
		State struct {
			NodeID      string
			KeyPath     string
			PublicHost  string
			KnownPeers  []string
			PeerTimeout time.Duration `conf:"default:5s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work blockchain node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// The node id is who gets paid the mining reward.
	nodeID, err := nodeIdentity(cfg.State.NodeID, cfg.State.KeyPath)
	if err != nil {
		return fmt.Errorf("unable to establish node identity: %w", err)
	}
	log.Infow("startup", "status", "node identity", "nodeid", nodeID)

	// The host peers reach this node at. A peer registration naming it is
	// never fetched from during conflict resolution.
	host, err := publicHost(cfg.State.PublicHost, cfg.Web.APIHost)
	if err != nil {
		return fmt.Errorf("unable to establish public host: %w", err)
	}
	log.Infow("startup", "status", "public host", "host", host)

	// A peer set is a collection of known nodes in the network so conflicts
	// can be resolved against their chains.
	peerSet := peer.NewPeerSet()
	for _, address := range cfg.State.KnownPeers {
		pr, err := peer.Parse(address)
		if err != nil {
			return fmt.Errorf("parsing known peer %q: %w", address, err)
		}
		peerSet.Add(pr)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the chain,
	// the mempool and the known peers.
	state, err := state.New(state.Config{
		NodeID:     nodeID,
		Host:       host,
		KnownPeers: peerSet,
		Fetcher:    state.NewHTTPFetcher(cfg.State.PeerTimeout),
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}
	defer state.Shutdown()

	// The worker package runs mining off the request goroutines. The worker
	// will register itself with the state.
	worker.Run(state, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing API support")

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Stop any mining in flight so those requests can complete.
		state.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop API service gracefully: %w", err)
		}
	}

	return nil
}

// nodeIdentity returns the configured node id. Without one, the address of
// the private key at keyPath is used and failing that a random id.
func nodeIdentity(nodeID string, keyPath string) (string, error) {
	if nodeID != "" {
		return nodeID, nil
	}

	if keyPath != "" {
		privateKey, err := crypto.LoadECDSA(keyPath)
		if err != nil {
			return "", fmt.Errorf("unable to load private key for node: %w", err)
		}
		return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
	}

	return strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

// publicHost returns the host:port peers use to reach this node. Without a
// configured public host the api host is used, with an unspecified address
// replaced by localhost.
func publicHost(public string, apiHost string) (string, error) {
	if public != "" {
		pr, err := peer.Parse(public)
		if err != nil {
			return "", err
		}
		return pr.Host, nil
	}

	host, port, err := net.SplitHostPort(apiHost)
	if err != nil {
		return "", fmt.Errorf("parsing api host %q: %w", apiHost, err)
	}

	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}

	return net.JoinHostPort(host, port), nil
}
