// Package api assembles the route table served by the lambda.
package api

import (
	"time"

	"github.com/vsnandy/sportsproxy/espn"
	"github.com/vsnandy/sportsproxy/health"
	"github.com/vsnandy/sportsproxy/ncaa"
	"github.com/vsnandy/sportsproxy/pickpoolr"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/upstream"
)

// Deps are the collaborators the route handlers are built from.
type Deps struct {
	AllowOrigin string
	Getter      upstream.Getter
	Bets        pickpoolr.BetStore
	Draft       ncaa.DraftStore
	Members     ncaa.MemberLister

	// Now is stubbed in tests.
	Now func() time.Time
}

// NewRouter registers every route and fails if any of them could not be
// built.
func NewRouter(d Deps) (*proxy.Router, error) {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	router := proxy.NewRouter(d.AllowOrigin)

	health.Register(router, now)
	espn.Register(router, d.Getter)

	ncaaAdapter := &ncaa.Adapter{Getter: d.Getter, Draft: d.Draft, Members: d.Members, Now: now}
	ncaaAdapter.Register(router)

	bets := &pickpoolr.Service{Store: d.Bets, Now: now}
	bets.Register(router)

	if !router.Valid() {
		return nil, router.BuildErrors()
	}

	return router, nil
}
