package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"astroseva/internal/domain"
	"astroseva/internal/modules/booking"
	"astroseva/internal/modules/feed"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) do(method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) list() ([]booking.BookingView, error) {
	var env envelope[booking.ListResponse]
	if err := c.do(http.MethodGet, "/api/v1/bookings", nil, &env); err != nil {
		return nil, err
	}
	if env.Error != nil {
		return env.Data.Bookings, fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	return env.Data.Bookings, nil
}

func (c *client) setStatus(id string, status domain.BookingStatus) (*booking.BookingView, error) {
	var env envelope[struct {
		Booking booking.BookingView `json:"booking"`
	}]
	err := c.do(http.MethodPatch, "/api/v1/bookings/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)}, &env)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("request failed")
	}
	return &env.Data.Booking, nil
}

func main() {
	api := flag.String("api", "http://localhost:8080", "API base URL")
	token := flag.String("token", os.Getenv("ASTROSEVA_TOKEN"), "access token")
	set := flag.String("set", "", "change a booking status before watching, as id:status")
	flag.Parse()

	if *token == "" {
		log.Fatal("an access token is required (-token or ASTROSEVA_TOKEN)")
	}
	c := &client{base: strings.TrimRight(*api, "/"), token: *token, http: &http.Client{Timeout: 15 * time.Second}}
	mirror := feed.NewMirror()

	rows, err := c.list()
	if err != nil {
		log.Printf("initial listing degraded: %v", err)
	}
	mirror.Load(rows)
	log.Printf("loaded %d bookings", mirror.Len())

	if *set != "" {
		id, status, ok := strings.Cut(*set, ":")
		if !ok {
			log.Fatalf("-set expects id:status, got %q", *set)
		}
		applyStatus(c, mirror, id, domain.BookingStatus(status))
	}

	wsURL := strings.Replace(c.base, "http", "ws", 1) + "/ws/bookings?token=" + url.QueryEscape(*token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var msg feed.WSServerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("feed closed: %v", err)
				return
			}
			handle(mirror, msg)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
	printSnapshot(mirror)
}

// applyStatus shows the requested status immediately, then settles it to
// whatever the server answers.
func applyStatus(c *client, mirror *feed.Mirror, id string, status domain.BookingStatus) {
	if !mirror.Propose(id, status) {
		log.Printf("booking %s is not in your listing", id)
		return
	}
	log.Printf("%s -> %s (pending)", id, status)

	row, err := c.setStatus(id, status)
	if err != nil {
		mirror.Resolve(id, nil)
		current, _ := mirror.Get(id)
		log.Printf("%s stays %s: %v", id, current.Status, err)
		return
	}
	mirror.Resolve(id, row)
	log.Printf("%s is now %s", id, row.Status)
}

func handle(mirror *feed.Mirror, msg feed.WSServerMessage) {
	switch msg.Type {
	case "hello":
		if msg.Actor != nil {
			log.Printf("feed connected as %s (%s)", msg.Actor.ID, msg.Actor.Role)
		}
	case "change":
		if msg.Row == nil {
			return
		}
		if mirror.Apply(msg.EventType, *msg.Row) {
			log.Printf("%-6s %s %s %s", msg.EventType, msg.Row.ID, msg.Row.ServiceType, msg.Row.Status)
		}
	case "error":
		log.Printf("feed error %s: %s", msg.ErrorCode, msg.ErrorMessage)
	}
}

func printSnapshot(mirror *feed.Mirror) {
	for _, b := range mirror.Snapshot() {
		owner := "-"
		if b.AssignedTo != nil {
			owner = *b.AssignedTo
		}
		fmt.Printf("%s  %-12s %-10s %s\n", b.ID, b.ServiceType, b.Status, owner)
	}
}
