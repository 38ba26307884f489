package main

//go-build: CGO_ENABLED=0

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	mqttlink "github.com/chargelab/meter.go/pkg/transport/mqtt"
	"github.com/chargelab/meter.go/pkg/transport/ws"
)

var (
	addr     = "localhost:5025"
	mqttURL  = ""
	wsURL    = ""
	evalOnly bool
)

func init() {
	if val := os.Getenv("METER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&addr, "addr", addr, "Instrument SCPI address.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL; overrides -addr when set.")
	flag.StringVar(&wsURL, "ws", wsURL, "Websocket URL; overrides -addr when set.")
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// client is a line-oriented connection to the instrument: one command
// line out, one reply line back.
type client struct {
	conn io.ReadWriter
	rd   *bufio.Reader
}

func dial() (*client, error) {
	var conn io.ReadWriter
	var err error
	switch {
	case mqttURL != "":
		var q *mqttlink.Queue
		if q, err = mqttlink.NewQueueFromURL(mqttURL); err != nil {
			return nil, err
		}
		if err = q.Connect(); err != nil {
			return nil, err
		}
		conn, err = mqttlink.ForOperator(q)
	case wsURL != "":
		conn, err = ws.Dial(wsURL, "")
	default:
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	return &client{conn: conn, rd: bufio.NewReader(conn)}, nil
}

func (c *client) roundTrip(line string) (string, error) {
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return "", err
	}
	reply, err := c.rd.ReadString('\n')
	return strings.TrimSuffix(reply, "\n"), err
}

// do runs one command and prints the reply, surfacing ERR replies as
// shell errors.
func do(c *ishell.Context, cl *client, line string) {
	reply, err := cl.roundTrip(line)
	if err != nil {
		c.Err(err)
		return
	}
	if strings.HasPrefix(reply, "ERR:") {
		c.Err(fmt.Errorf("%s", reply))
		return
	}
	c.Println(reply)
}

// queryOrSet sends "NAME?" with no argument and "NAME <arg>" with one.
func queryOrSet(cl *client, name string) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) == 0 {
			do(c, cl, name+"?")
			return
		}
		do(c, cl, name+" "+strings.Join(c.Args, " "))
	}
}

func main() {
	flag.Parse()

	cl, err := dial()
	if err != nil {
		log.Fatalln(err)
	}

	sh := ishell.New()
	sh.SetPrompt("meter> ")
	sh.AddCmd(&ishell.Cmd{
		Name: "idn",
		Help: "identify the instrument",
		Func: func(c *ishell.Context) { do(c, cl, "*IDN?") },
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "input",
		Help: "input [source]: query or route the input source",
		Func: queryOrSet(cl, "ROUTE:INPUT"),
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "window",
		Help: "window [plc]: query or set the acquisition window",
		Func: queryOrSet(cl, "SENSE:WINDOW:PLC"),
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "count",
		Help: "count [n|INF]: query or set samples per trigger",
		Func: queryOrSet(cl, "SAMPLE:COUNT"),
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "trigger",
		Help: "arm an acquisition",
		Func: func(c *ishell.Context) { do(c, cl, "INIT") },
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "points",
		Help: "number of buffered measurements",
		Func: func(c *ishell.Context) { do(c, cl, "DATA:POINTS?") },
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "last",
		Help: "most recent measurement",
		Func: func(c *ishell.Context) { do(c, cl, "FETCH:LAST?") },
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "fetch",
		Help: "fetch [n]: pop n measurements (default 1)",
		Func: func(c *ishell.Context) {
			line := "FETCH?"
			if len(c.Args) > 0 {
				line += " " + c.Args[0]
			}
			do(c, cl, line)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "meas",
		Help: "pop one measurement",
		Func: func(c *ishell.Context) { do(c, cl, "READ?") },
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "raw <line>: send a raw command line",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("nothing to send"))
				return
			}
			do(c, cl, strings.Join(c.Args, " "))
		},
	})

	if evalOnly {
		if err := sh.Process(flag.Args()...); err != nil {
			os.Exit(1)
		}
		return
	}
	sh.Println("connected; type help for commands")
	sh.Run()
}
