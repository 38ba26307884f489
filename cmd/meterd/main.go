package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/chargelab/meter.go/pkg/framework"
	"github.com/chargelab/meter.go/pkg/meter"
	"github.com/chargelab/meter.go/pkg/proto"
	"github.com/chargelab/meter.go/pkg/rt/clock"
	"github.com/chargelab/meter.go/pkg/rt/timer"
	mqttlink "github.com/chargelab/meter.go/pkg/transport/mqtt"
	"github.com/chargelab/meter.go/pkg/transport/ws"
)

var (
	listenAddr  = ":5025"
	consoleAddr = ""
	wsAddr      = ""
	mqttURL     = ""
	tickRate    = uint(1024)
	maxConns    = 4
)

func init() {
	if val := os.Getenv("METER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&listenAddr, "listen", listenAddr, "SCPI listen address.")
	flag.StringVar(&consoleAddr, "console-listen", consoleAddr, "Console listen address, disabled if empty.")
	flag.StringVar(&wsAddr, "ws-listen", wsAddr, "Websocket SCPI listen address, disabled if empty.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL, disabled if empty.")
	flag.UintVar(&tickRate, "tick-rate", tickRate, "Time base ticks per second, a power of two in [16, 1024].")
	flag.IntVar(&maxConns, "max-conns", maxConns, "Connection limit per listener.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	ticker, err := clock.New(uint16(tickRate))
	if err != nil {
		glog.Exitf("tick rate: %v", err)
	}
	timers := timer.NewService(ticker)
	m := meter.New(meter.DefaultIdentity(), ticker, timers)
	glog.Infof("%s", m.Identity)

	loop := framework.NewLoop()
	hub := proto.NewHub(2 * maxConns)
	runner := framework.NewRunner().HandleSignals()

	scpi := &linkServer{
		name:        "scpi",
		addr:        listenAddr,
		maxConns:    maxConns,
		loop:        loop,
		hub:         hub,
		newEndpoint: m.NewSCPIEndpoint,
	}
	servers := []*linkServer{scpi}
	if consoleAddr != "" {
		servers = append(servers, &linkServer{
			name:        "console",
			addr:        consoleAddr,
			maxConns:    maxConns,
			loop:        loop,
			hub:         hub,
			newEndpoint: m.NewConsoleEndpoint,
		})
	}

	loop.Add(timers)
	for _, s := range servers {
		loop.Add(s)
		runner.Go(s)
	}
	loop.Add(hub)

	runner.Go(
		framework.NamedRun("loop", loop),
		framework.NewTickSource(ticker),
	)

	if wsAddr != "" {
		handler := ws.Handler(func(conn io.ReadWriter) {
			if !scpi.admit() {
				glog.Warning("ws: connection limit reached")
				return
			}
			scpi.serveLink(runner.Context, conn)
		})
		server := &http.Server{Addr: wsAddr, Handler: handler}
		runner.Go(framework.NamedRun("ws", framework.RunFunc(func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				server.Close()
			}()
			glog.Infof("ws listening on %s", wsAddr)
			err := server.ListenAndServe()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		})))
	}

	if mqttURL != "" {
		q, err := mqttlink.NewQueueFromURL(withClientID(mqttURL, "meterd-"+m.Identity.Serial))
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		runner.Go(framework.NamedRun("mqtt-link", framework.RunFunc(func(ctx context.Context) error {
			if err := q.Connect(); err != nil {
				return err
			}
			defer q.Close()
			link, err := mqttlink.ForInstrument(q)
			if err != nil {
				return err
			}
			defer link.Close()
			if !scpi.admit() {
				return fmt.Errorf("no connection slot for broker link")
			}
			scpi.serveLink(ctx, link)
			return ctx.Err()
		})))
	}

	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

// withClientID defaults the broker client id to one derived from the
// instrument serial, unless the URL already names one.
func withClientID(brokerURL, clientID string) string {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return brokerURL
	}
	query := u.Query()
	if query.Get("client-id") != "" {
		return brokerURL
	}
	query.Set("client-id", clientID)
	u.RawQuery = query.Encode()
	return u.String()
}
