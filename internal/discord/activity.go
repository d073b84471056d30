package discord

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tutien/tutienbot/internal/cultivation"
	"github.com/tutien/tutienbot/internal/domain"
)

// voiceFlushInterval is how often accumulated voice time is credited for
// users still connected. Leaving a channel flushes immediately.
const voiceFlushInterval = time.Minute

// activityTracker feeds chat and voice activity into the progression
// engine. Voice presence is tracked in memory; only the credited seconds
// ever reach storage.
type activityTracker struct {
	svc   cultivation.Service
	bonus *BonusResolver

	mu      sync.Mutex
	inVoice map[string]voicePresence // userID -> presence

	done chan struct{}
	wg   sync.WaitGroup
}

type voicePresence struct {
	since    time.Time
	bonusPct int
}

func newActivityTracker(svc cultivation.Service, bonus *BonusResolver) *activityTracker {
	return &activityTracker{
		svc:     svc,
		bonus:   bonus,
		inVoice: make(map[string]voicePresence),
		done:    make(chan struct{}),
	}
}

func (t *activityTracker) start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(voiceFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.flushAll(time.Now())
			case <-t.done:
				t.flushAll(time.Now())
				return
			}
		}
	}()
}

func (t *activityTracker) stop() {
	close(t.done)
	t.wg.Wait()
}

// onMessageCreate credits one message of activity.
func (t *activityTracker) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	ctx := commandContext()
	if _, err := t.svc.AccrueActivity(ctx, m.Author.ID, domain.ActivityDelta{Messages: 1}, t.bonus.Resolve(m.Member)); err != nil {
		slog.Error("Failed to accrue message activity", "userID", m.Author.ID, "error", err)
	}
}

// onVoiceStateUpdate starts or stops the user's voice clock. Mutes and
// deafens do not pause accrual; only leaving the channel does.
func (t *activityTracker) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.Member != nil && v.Member.User != nil && v.Member.User.Bot {
		return
	}
	now := time.Now()

	t.mu.Lock()
	presence, tracked := t.inVoice[v.UserID]
	joined := v.ChannelID != ""
	if joined && !tracked {
		t.inVoice[v.UserID] = voicePresence{since: now, bonusPct: t.bonus.Resolve(v.Member)}
		t.mu.Unlock()
		return
	}
	if !joined && tracked {
		delete(t.inVoice, v.UserID)
		t.mu.Unlock()
		t.credit(v.UserID, presence, now)
		return
	}
	t.mu.Unlock()
}

// flushAll credits elapsed time for everyone still connected and restarts
// their clocks.
func (t *activityTracker) flushAll(now time.Time) {
	t.mu.Lock()
	pending := make(map[string]voicePresence, len(t.inVoice))
	for userID, presence := range t.inVoice {
		pending[userID] = presence
		t.inVoice[userID] = voicePresence{since: now, bonusPct: presence.bonusPct}
	}
	t.mu.Unlock()

	for userID, presence := range pending {
		t.credit(userID, presence, now)
	}
}

func (t *activityTracker) credit(userID string, presence voicePresence, now time.Time) {
	seconds := int64(now.Sub(presence.since).Seconds())
	if seconds <= 0 {
		return
	}
	ctx := commandContext()
	if _, err := t.svc.AccrueActivity(ctx, userID, domain.ActivityDelta{VoiceSeconds: seconds}, presence.bonusPct); err != nil {
		slog.Error("Failed to accrue voice activity", "userID", userID, "error", err)
	}
}
