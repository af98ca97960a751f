package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"ReachPilot/internal/metrics"
	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

// InboxStats summarizes one inbound pass.
type InboxStats struct {
	Processed     int `json:"processed"`
	UniqueSenders int `json:"unique_senders"`
	Responded     int `json:"responded"`
	Failed        int `json:"failed"`
}

// ProcessInbox fetches a bounded batch of unread messages, collapses
// them to one unit per sender, and advances each sender's lead where a
// reply transition applies. Failures are isolated per sender; only a
// failure to list the inbox at all aborts the pass.
func (e *Engine) ProcessInbox(ctx context.Context) (InboxStats, error) {
	var stats InboxStats

	msgs, err := e.mailbox.ListUnread(ctx, e.opts.InboxBatchSize)
	if err != nil {
		return stats, fmt.Errorf("list unread: %w", err)
	}
	if len(msgs) == 0 {
		return stats, nil
	}

	groups, senders := groupBySender(msgs)
	stats.UniqueSenders = len(senders)

	for _, sender := range senders {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		group := groups[sender]
		stats.Processed += len(group)

		responded, err := e.handleSender(ctx, sender, group[0])
		if err != nil {
			stats.Failed++
			e.log.Error("inbound handling failed",
				zap.String("sender", sender),
				zap.Error(err),
			)
		} else if responded {
			stats.Responded++
			metrics.RepliesSent.Inc()
		}

		// Mark the whole group read, duplicates included and even after
		// a failure, so the same messages are not reprocessed forever.
		// Duplicates never generate a second send.
		for _, m := range group {
			if err := e.mailbox.MarkRead(ctx, m.ID); err != nil {
				e.log.Warn("mark read failed",
					zap.String("sender", sender),
					zap.String("message_id", m.ID),
					zap.Error(err),
				)
			}
		}
	}

	metrics.InboundProcessed.Add(float64(stats.Processed))
	return stats, nil
}

// handleSender runs the triage steps for one sender's newest message.
// The returned bool reports whether an outbound reply went out.
func (e *Engine) handleSender(ctx context.Context, sender string, primary models.Message) (bool, error) {
	if !isJobInquiry(primary.Subject, primary.Body) {
		return false, nil
	}

	lead, err := e.store.GetLead(ctx, sender)
	if err != nil {
		return false, fmt.Errorf("load lead: %w", err)
	}

	// Missing record, or a stored stage we do not recognize: treat as a
	// brand-new lead and start it at the initial stage. Resetting beats
	// failing on a manually edited or corrupted record.
	if lead == nil || !lead.Stage.Valid() {
		return e.welcomeLead(ctx, lead, sender, primary)
	}

	if lead.Terminal() {
		return false, nil
	}

	if !stage.AdvancesOnReply(lead.Stage) {
		// Only an external trigger moves this stage.
		e.log.Debug("reply ignored at gated stage",
			zap.String("sender", sender),
			zap.String("stage", lead.Stage.String()),
		)
		return false, nil
	}

	next := stage.NextOnReply(lead.Stage)
	content, ok := e.templates.ForStage(next, lead)
	if !ok {
		return false, nil
	}

	if err := e.dispatch.Send(ctx, models.Outbound{
		To:       sender,
		Subject:  content.Subject,
		Body:     content.Body,
		ThreadID: primary.ThreadID,
	}); err != nil {
		return false, err
	}

	// Persist only after the send went out. A crash between the two can
	// re-send on the next sweep; accepted at-least-once tradeoff.
	if _, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:      sender,
		Name:       namePatch(lead, primary.Name),
		Stage:      &next,
		AppendNote: fmt.Sprintf("auto-advanced to %s on reply %q", next, primary.Subject),
	}); err != nil {
		return true, fmt.Errorf("persist stage %s: %w", next, err)
	}
	return true, nil
}

// welcomeLead handles a first inquiry (or a record whose stage had to
// be reset): send the initial-stage template and persist the lead at
// the initial stage. The reply sequence starts on the next reply.
func (e *Engine) welcomeLead(ctx context.Context, prev *models.Lead, sender string, primary models.Message) (bool, error) {
	initial := stage.Initial()

	probe := prev
	if probe == nil {
		probe = &models.Lead{Email: sender, Name: primary.Name, Stage: initial}
	}
	content, ok := e.templates.ForStage(initial, probe)
	if !ok {
		return false, nil
	}

	if err := e.dispatch.Send(ctx, models.Outbound{
		To:       sender,
		Subject:  content.Subject,
		Body:     content.Body,
		ThreadID: primary.ThreadID,
	}); err != nil {
		return false, err
	}

	note := "lead created from inbound inquiry"
	if prev != nil {
		note = fmt.Sprintf("stage reset to %s from unrecognized value %q", initial, string(prev.Stage))
	}

	if _, err := e.store.UpsertLead(ctx, models.LeadPatch{
		Email:      sender,
		Name:       namePatch(prev, primary.Name),
		Stage:      &initial,
		AppendNote: note,
	}); err != nil {
		return true, fmt.Errorf("persist new lead: %w", err)
	}
	return true, nil
}

// groupBySender buckets messages by lowercased sender and sorts each
// bucket newest first, so index 0 is the primary message. The returned
// sender list is sorted for a stable processing order.
func groupBySender(msgs []models.Message) (map[string][]models.Message, []string) {
	groups := make(map[string][]models.Message)
	for _, m := range msgs {
		key := models.NormalizeEmail(m.SenderEmail)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], m)
	}

	senders := make([]string, 0, len(groups))
	for sender, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.After(group[j].Date)
		})
		groups[sender] = group
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	return groups, senders
}
