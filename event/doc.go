// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package event provides the in-process notification bus.

The voting engine publishes one Event per committed notification, in the
order the notifications were produced. Each event carries a uuid, the
session id, its per-session sequence number and a typed payload:

	session-created      SessionCreatedEvent
	phase-changed        PhaseChangedEvent
	voter-registered     VoterRegisteredEvent
	proposal-registered  ProposalRegisteredEvent
	vote-cast            VoteCastEvent
	tally-completed      TallyCompletedEvent

Subscribers receive events on a buffered channel or through a callback:

	id, ch := bus.Subscribe(event.TypeVoteCast)
	bus.SubscribeFunc(event.TypeAll, func(evt event.Event) { ... })

Publish never blocks. A subscriber whose queue is full misses the event
and the drop is counted in metrics.
*/
package event
