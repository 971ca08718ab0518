package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream the node's activity until interrupted",
	RunE:  watchRun,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchRun(cmd *cobra.Command, args []string) error {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/events"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", u, err)
	}
	defer conn.Close()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		var evt events.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		fmt.Printf("%s %s\n", evt.Time.Format("15:04:05.000"), evt.Message)
	}
}
