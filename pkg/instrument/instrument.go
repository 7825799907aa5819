// SPDX-License-Identifier: GPL-3.0-or-later

package instrument

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/souqline/souqline/go/telemetry/pkg/metrix"
)

const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
)

// APIRequest identifies an inbound request.
type APIRequest struct {
	Route  string
	Method string
}

// DependencyCall identifies an outbound call to a dependency (database, AI
// provider, filesystem).
type DependencyCall struct {
	Dependency string
	Operation  string
}

// Message is one processed chat message and the tokens it cost.
type Message struct {
	Kind   string
	Role   string
	Source string
	Tokens float64
}

// TokenGrant is a number of tokens credited to a user.
type TokenGrant struct {
	Source string
	Amount float64
}

// Instrumenter records application events into a registry. Every Measure
// method records exactly once per call, whether the work returns normally,
// returns an error or panics.
type Instrumenter struct {
	reg *metrix.Registry
	now func() time.Time
}

func New(reg *metrix.Registry) *Instrumenter {
	return &Instrumenter{reg: reg, now: time.Now}
}

// MeasureAPI runs fn and records its duration and outcome. A zero status with
// a nil error is recorded as 200, with a non-nil error or a panic as 500.
// Statuses >= 500 also count as API errors.
func (in *Instrumenter) MeasureAPI(ctx context.Context, req APIRequest, fn func(context.Context) (int, error)) (status int, err error) {
	start := in.now()
	defer func() {
		rec := recover()

		code := status
		switch {
		case rec != nil, code == 0 && err != nil:
			code = http.StatusInternalServerError
		case code == 0:
			code = http.StatusOK
		}
		in.recordAPI(req, code, in.now().Sub(start))

		if rec != nil {
			panic(rec)
		}
	}()

	return fn(ctx)
}

// MeasureDependency runs fn and records its duration and outcome. The outcome
// is the HTTP status class when fn reports a status, network_error when it
// fails without one (or panics) and ok otherwise.
func (in *Instrumenter) MeasureDependency(ctx context.Context, call DependencyCall, fn func(context.Context) (int, error)) (status int, err error) {
	start := in.now()
	defer func() {
		rec := recover()

		outcome := OutcomeOK
		switch {
		case rec != nil, status == 0 && err != nil:
			outcome = OutcomeNetworkError
		case status > 0:
			outcome = statusClass(status)
		}
		in.recordDependency(call, outcome, in.now().Sub(start))

		if rec != nil {
			panic(rec)
		}
	}()

	return fn(ctx)
}

func (in *Instrumenter) RecordMessage(m Message) {
	labels := metrix.Labels{"kind": m.Kind, "role": m.Role, "source": m.Source}
	in.reg.Inc(MetricMessagesProcessed, labels)
	in.reg.Add(MetricMessageTokens, labels, m.Tokens)
}

func (in *Instrumenter) RecordTokenGrant(g TokenGrant) {
	in.reg.Add(MetricTokensGranted, metrix.Labels{"source": g.Source}, g.Amount)
}

// Registry returns the underlying registry.
func (in *Instrumenter) Registry() *metrix.Registry {
	return in.reg
}

func (in *Instrumenter) recordAPI(req APIRequest, status int, elapsed time.Duration) {
	labels := metrix.Labels{"route": req.Route, "method": req.Method, "status": strconv.Itoa(status)}

	in.reg.Inc(MetricAPIRequests, labels)
	if status >= http.StatusInternalServerError {
		in.reg.Inc(MetricAPIErrors, labels)
	}
	in.reg.Observe(MetricAPIDuration, metrix.Labels{"route": req.Route, "method": req.Method}, elapsed.Seconds())
}

func (in *Instrumenter) recordDependency(call DependencyCall, outcome string, elapsed time.Duration) {
	labels := metrix.Labels{"dependency": call.Dependency, "operation": call.Operation}

	in.reg.Observe(MetricDependencyDuration, labels, elapsed.Seconds())
	labels["outcome"] = outcome
	in.reg.Inc(MetricDependencyRequests, labels)
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
