/*
Package resilience provides the circuit breaker that guards remote calls.

A Breaker starts closed. When Settings.Trip reports true for the counts of the
current window it opens, and every call fails fast with ErrCircuitOpen until
the cooldown expires. It then admits Settings.Trials calls half-open; if they
all succeed it closes, and any failure reopens it.

	Closed --[trip]-> Open --[cooldown]-> Half-Open --[trials ok]-> Closed
	                    ^                     |
	                    +-----[failure]-------+

Settings.Failure selects which errors count. The Dropbox client uses it so
that ordinary path errors (a missing file, a name conflict) do not trip the
breaker; only transport and server failures do.

	b := resilience.New("dropbox", resilience.Settings{
		Cooldown: 30 * time.Second,
		Failure:  isOutage,
		Logger:   logger,
	})
	err := b.Do(func() error {
		return call(ctx)
	})
*/
package resilience
