package mpesa

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/prompttemplates/marketplace/internal/clock"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
)

const receiptDigits = 6

// Adapter simulates an M-Pesa STK-push charge: no external call, a
// configurable approval rate, and a synthesized receipt on approval.
type Adapter struct {
	successRate float64
	clock       clock.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func New(successRate float64, clk clock.Clock, seed int64) *Adapter {
	return &Adapter{
		successRate: successRate,
		clock:       clk,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *Adapter) Provider() string { return "mpesa" }

func (a *Adapter) Charge(_ context.Context, _ paymentdomain.ChargeRequest) (*paymentdomain.ChargeResult, error) {
	a.mu.Lock()
	approved := a.rng.Float64() < a.successRate
	suffix := a.rng.Intn(1000)
	a.mu.Unlock()

	if !approved {
		return nil, paymentdomain.ErrChargeDeclined
	}

	return &paymentdomain.ChargeResult{Receipt: a.receipt(suffix)}, nil
}

// receipt builds MPE + the trailing digits of the current epoch millis + a
// random integer, matching the upstream wire format.
func (a *Adapter) receipt(suffix int) string {
	millis := fmt.Sprintf("%d", a.clock.Now().UnixMilli())
	if len(millis) > receiptDigits {
		millis = millis[len(millis)-receiptDigits:]
	}
	return fmt.Sprintf("MPE%s%d", millis, suffix)
}
