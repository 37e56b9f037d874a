package service

import (
	"context"
	"testing"
	"time"

	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/internal/testutil"
	"haley-companion-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testFreeLimit = 5
	testWindow    = 24 * time.Hour
)

type testEnv struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	clock      *clock.Fixed
	ledger     *QuotaLedger
	bus        *events.Bus
	publisher  IPublisherService
	metrics    *metrics.Metrics
	log        logger.ILogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	clk := clock.NewFixed(testutil.Epoch)
	bus := events.NewBus("test.events", nil)
	t.Cleanup(func() { bus.Close() })

	m := metrics.NewMetrics()
	log := logger.NewNopLogger()

	return &testEnv{
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
		clock:      clk,
		ledger:     NewQuotaLedger(clk, testFreeLimit, testWindow),
		bus:        bus,
		publisher:  NewPublisherService(bus, clk, log, m),
		metrics:    m,
		log:        log,
	}
}

// subscribe starts recording bus events; call it before the action under test.
func (e *testEnv) subscribe(t *testing.T) <-chan *message.Message {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages, err := e.bus.Subscribe(ctx)
	require.NoError(t, err)
	return messages
}

func nextEvent(t *testing.T, messages <-chan *message.Message) events.BaseEvent {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		e, err := events.Decode(msg)
		require.NoError(t, err)
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return events.BaseEvent{}
	}
}

func noEvent(t *testing.T, messages <-chan *message.Message) {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		e, _ := events.Decode(msg)
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
