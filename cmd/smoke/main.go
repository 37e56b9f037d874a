package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"haley-companion-be/pkg/events"
	pktNats "haley-companion-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type quota struct {
	Limit     int  `json:"limit"`
	Remaining *int `json:"remaining"`
	CanSend   bool `json:"can_send"`
}

type client struct {
	baseURL string
	token   string
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	token := flag.String("token", "", "bearer token (when AUTH_REQUIRED=true)")
	natsURL := flag.String("watch", "", "NATS URL; print domain events instead of running the quota flow")
	flag.Parse()

	if *natsURL != "" {
		watch(*natsURL)
		return
	}

	c := &client{baseURL: *baseURL, token: *token}
	if err := c.run(); err != nil {
		color.Red("FAIL: %v", err)
		os.Exit(1)
	}
	color.Green("PASS: quota flow behaves as expected")
}

// run walks a fresh user through the free cap, the 429 refusal and a plan upgrade.
func (c *client) run() error {
	email := fmt.Sprintf("smoke-%s@haley.test", uuid.NewString()[:8])
	var user struct {
		Id string `json:"id"`
	}
	if _, err := c.do("POST", "/users", map[string]string{"email": email}, &user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	color.Cyan("Created user %s (%s)", user.Id, email)
	defer func() {
		if _, err := c.do("DELETE", "/users/"+user.Id, nil, nil); err != nil {
			color.Yellow("cleanup: %v", err)
		}
	}()

	var state quota
	if _, err := c.do("GET", "/chat-limits/"+user.Id, nil, &state); err != nil {
		return err
	}
	fmt.Printf("Fresh quota: limit=%d remaining=%d\n", state.Limit, *state.Remaining)

	for i := 1; i <= state.Limit; i++ {
		status, err := c.do("POST", "/chat/send", map[string]string{"user_id": user.Id, "content": fmt.Sprintf("hello #%d", i)}, nil)
		if err != nil {
			return fmt.Errorf("send %d (status %d): %w", i, status, err)
		}
		fmt.Printf("  send %d -> %d\n", i, status)
	}

	status, _ := c.do("POST", "/chat/send", map[string]string{"user_id": user.Id, "content": "one too many"}, nil)
	if status != http.StatusTooManyRequests {
		return fmt.Errorf("expected 429 at the cap, got %d", status)
	}
	color.Yellow("  send %d -> 429 (cap reached)", state.Limit+1)

	if _, err := c.do("PUT", "/chat-limits/"+user.Id+"/plan", map[string]string{"plan_type": "pro"}, &state); err != nil {
		return fmt.Errorf("upgrade plan: %w", err)
	}
	if state.Remaining != nil || !state.CanSend {
		return fmt.Errorf("pro plan should be unlimited")
	}
	if status, err := c.do("POST", "/chat/send", map[string]string{"user_id": user.Id, "content": "after upgrade"}, nil); err != nil {
		return fmt.Errorf("send after upgrade (status %d): %w", status, err)
	}
	fmt.Println("  send after upgrade -> ok")
	return nil
}

func (c *client) do(method, path string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, err
	}
	if !env.Success {
		return resp.StatusCode, fmt.Errorf("API Error %d: %s", resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return resp.StatusCode, json.Unmarshal(env.Data, out)
	}
	return resp.StatusCode, nil
}

func watch(url string) {
	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", "", func(ctx context.Context, e events.BaseEvent) error {
		color.Cyan("%s %s user=%s", e.OccurredAt.Format(time.RFC3339), e.Type, e.UserID)
		if len(e.Data) > 0 {
			pretty, _ := json.MarshalIndent(e.Data, "  ", "  ")
			fmt.Printf("  %s\n", pretty)
		}
		return nil
	})
	if err != nil {
		color.Red("Subscribe failed: %v", err)
		os.Exit(1)
	}

	color.Green("Watching %s.> (Ctrl+C to stop)", pktNats.SubjectPrefix)
	<-ctx.Done()
}
