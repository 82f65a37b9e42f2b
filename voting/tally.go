// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/models"
)

// proposalVotes is a non-blank proposal with at least one vote
type proposalVotes struct {
	id    uint8
	count uint32
}

// ComputeTally aggregates the final vote counts of a session. proposals
// should hold every proposal of the session; the blank proposal is
// recognised by its id. Winners are all non-blank proposals sharing the
// highest non-zero count, in ascending id order. The winner set is never
// truncated; Tally rejects results holding more than
// models.MaxWinningProposals winners.
func ComputeTally(voterCount uint32, proposals []models.Proposal) models.SessionResult {
	result := models.SessionResult{WinningProposalIDs: models.ProposalIDList{}}

	var counted []proposalVotes
	for _, p := range proposals {
		if p.VoteCount == 0 {
			continue
		}
		if p.IsBlank() {
			result.BlankVotes += p.VoteCount
		} else {
			counted = append(counted, proposalVotes{id: p.ProposalID, count: p.VoteCount})
		}
		result.TotalVotes += p.VoteCount
	}

	// Each voter votes at most once, so this only saturates on corrupt input
	if result.TotalVotes <= voterCount {
		result.Abstention = voterCount - result.TotalVotes
	}

	// Sort by count descending, id ascending
	sort.Slice(counted, func(i, j int) bool {
		if counted[i].count != counted[j].count {
			return counted[i].count > counted[j].count
		}
		return counted[i].id < counted[j].id
	})

	for _, pv := range counted {
		if pv.count != counted[0].count {
			break
		}
		result.WinningProposalIDs = append(result.WinningProposalIDs, pv.id)
	}

	return result
}

// Tally finalizes the session from the supplied non-blank proposal ids.
// The set must name every non-blank proposal of the session exactly
// once; vote counts always come from the stored records.
func (e *Engine) Tally(ctx context.Context, sessionID uint64, caller string, proposalIDs []uint8) (models.SessionResult, error) {
	return e.tally(ctx, sessionID, caller, proposalIDs, false)
}

// TallyStored finalizes the session using every stored proposal
func (e *Engine) TallyStored(ctx context.Context, sessionID uint64, caller string) (models.SessionResult, error) {
	return e.tally(ctx, sessionID, caller, nil, true)
}

func (e *Engine) tally(ctx context.Context, sessionID uint64, caller string, proposalIDs []uint8, useStored bool) (models.SessionResult, error) {
	var result models.SessionResult
	err := e.run(ctx, "tally", e.sessionLock(sessionID), func(t *txn) error {
		s, err := loadSession(ctx, t, sessionID)
		if err != nil {
			return err
		}
		if err := requireAdmin(s, caller); err != nil {
			return err
		}
		if err := requirePhase(s, models.PhaseVotingSessionEnded); err != nil {
			return err
		}

		stored, err := t.ListProposals(ctx, s.ID)
		if err != nil {
			return err
		}

		byID := make(map[uint8]models.Proposal, len(stored))
		var blank *models.Proposal
		for i := range stored {
			if stored[i].IsBlank() {
				blank = &stored[i]
				continue
			}
			byID[stored[i].ProposalID] = stored[i]
		}
		if blank == nil {
			return fmt.Errorf("session %d has no blank proposal", s.ID)
		}

		if useStored {
			proposalIDs = make([]uint8, 0, len(byID))
			for id := range byID {
				proposalIDs = append(proposalIDs, id)
			}
		}

		want := int(s.ProposalCount) - 1
		if len(proposalIDs) != want {
			return fmt.Errorf("%w: got %d proposals, session %d has %d", ErrIncompleteProposalSet, len(proposalIDs), s.ID, want)
		}

		selected := make([]models.Proposal, 0, len(proposalIDs)+1)
		selected = append(selected, *blank)
		seen := make(map[uint8]bool, len(proposalIDs))
		for _, id := range proposalIDs {
			p, ok := byID[id]
			if !ok || seen[id] {
				return fmt.Errorf("%w: proposal %d is missing, blank or repeated", ErrIncompleteProposalSet, id)
			}
			seen[id] = true
			selected = append(selected, p)
		}

		result = ComputeTally(s.VoterCount, selected)
		if len(result.WinningProposalIDs) > models.MaxWinningProposals {
			return fmt.Errorf("%w: %d proposals tied at the top, at most %d can be recorded",
				ErrTooManyWinners, len(result.WinningProposalIDs), models.MaxWinningProposals)
		}

		previous := s.Phase
		s.Result = &result
		s.Phase = models.PhaseVotesTallied
		s.UpdatedAt = t.now
		if err := t.UpdateSession(ctx, s); err != nil {
			return err
		}

		t.emit(event.TypeTallyCompleted, s.ID, event.TallyCompletedEvent{
			SessionID:          s.ID,
			VoterCount:         s.VoterCount,
			TotalVotes:         result.TotalVotes,
			BlankVotes:         result.BlankVotes,
			Abstention:         result.Abstention,
			WinningProposalIDs: result.WinningProposalIDs,
		})
		t.emit(event.TypePhaseChanged, s.ID, event.PhaseChangedEvent{
			SessionID: s.ID,
			Previous:  &previous,
			Current:   s.Phase,
		})
		return nil
	})
	if err != nil {
		return models.SessionResult{}, err
	}

	e.logger.Info("votes tallied",
		"session_id", sessionID,
		"total_votes", result.TotalVotes,
		"blank_votes", result.BlankVotes,
		"abstention", result.Abstention,
		"winners", len(result.WinningProposalIDs),
	)
	return result, nil
}

// GetResult returns the stored tally of a finalized session
func (e *Engine) GetResult(ctx context.Context, sessionID uint64) (models.SessionResult, error) {
	s, err := loadSession(ctx, e.store, sessionID)
	if err != nil {
		return models.SessionResult{}, err
	}
	if s.Phase != models.PhaseVotesTallied || s.Result == nil {
		return models.SessionResult{}, fmt.Errorf("%w: session %d is %s", ErrNotTallied, s.ID, s.Phase)
	}
	return *s.Result, nil
}
