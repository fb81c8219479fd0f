package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"taskorganizer/internal/models"
	"taskorganizer/internal/repositories"
)

// SuggestionContext carries the draft task fields a suggestion is asked for.
type SuggestionContext struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TimeSlot struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Confidence float64   `json:"confidence"`
}

type Suggestion struct {
	SuggestedPriority models.TaskPriority `json:"suggested_priority"`
	PriorityReason    string              `json:"priority_reason"`
	TimeSlots         []TimeSlot          `json:"suggested_time_slots"`
	Reasoning         string              `json:"reasoning"`
}

// SuggestService produces heuristic priority and time-slot suggestions from
// the user's task history. Pure scoring, no external calls.
type SuggestService interface {
	Suggest(ctx context.Context, userID int64, sctx *SuggestionContext) (*Suggestion, error)
}

type suggestService struct {
	tasks repositories.TaskRepository
}

func NewSuggestService(tasks repositories.TaskRepository) SuggestService {
	return &suggestService{tasks: tasks}
}

func (s *suggestService) Suggest(ctx context.Context, userID int64, sctx *SuggestionContext) (*Suggestion, error) {
	history, err := s.tasks.FindAll(ctx, models.TaskFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	priority, reason := suggestPriority(sctx, history)
	slots, reasoning := suggestTimeSlots(history, time.Now())

	return &Suggestion{
		SuggestedPriority: priority,
		PriorityReason:    reason,
		TimeSlots:         slots,
		Reasoning:         reasoning,
	}, nil
}

var urgencyKeywords = []string{"urgent", "asap", "important", "critical", "deadline"}

func suggestPriority(sctx *SuggestionContext, history []models.Task) (models.TaskPriority, string) {
	if sctx == nil {
		return models.PriorityMedium, "Default medium priority"
	}

	text := strings.ToLower(sctx.Title + " " + sctx.Description)
	hasUrgency := false
	for _, kw := range urgencyKeywords {
		if strings.Contains(text, kw) {
			hasUrgency = true
			break
		}
	}

	if len(history) == 0 {
		if hasUrgency {
			return models.PriorityHigh, "High priority due to urgency keywords"
		}
		return models.PriorityMedium, "Default medium priority for new users"
	}

	highCount := 0
	for _, t := range history {
		if t.Priority == models.PriorityHigh {
			highCount++
		}
	}
	highRatio := float64(highCount) / float64(len(history))

	switch {
	case hasUrgency || highRatio > 0.3:
		return models.PriorityHigh, "High priority due to urgency keywords or user's preference for high-priority tasks"
	case highRatio < 0.1:
		return models.PriorityLow, "Low priority based on user's historical task distribution"
	default:
		return models.PriorityMedium, "Medium priority based on user's historical patterns"
	}
}

// suggestTimeSlots builds a histogram of the hours at which the user's
// completed tasks were due and proposes up to two one-hour slots at the
// preferred hours within the next 72 hours.
func suggestTimeSlots(history []models.Task, now time.Time) ([]TimeSlot, string) {
	var completed []models.Task
	for _, t := range history {
		if t.Status == models.StatusDone && t.DueAt != nil {
			completed = append(completed, t)
		}
	}

	if len(completed) == 0 {
		slot1 := now.Add(2 * time.Hour)
		slot2 := now.Add(24 * time.Hour)
		return []TimeSlot{
			{Start: slot1, End: slot1.Add(time.Hour), Confidence: 0.5},
			{Start: slot2, End: slot2.Add(time.Hour), Confidence: 0.5},
		}, "Default time slots for new users"
	}

	hourCounts := make(map[int]int)
	for _, t := range completed {
		hourCounts[t.DueAt.Hour()]++
	}

	hours := make([]int, 0, len(hourCounts))
	for h := range hourCounts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if hourCounts[hours[i]] != hourCounts[hours[j]] {
			return hourCounts[hours[i]] > hourCounts[hours[j]]
		}
		return hours[i] < hours[j]
	})
	preferred := hours
	if len(preferred) > 2 {
		preferred = preferred[:2]
	}

	isPreferred := make(map[int]bool, len(preferred))
	for _, h := range preferred {
		isPreferred[h] = true
	}

	var slots []TimeSlot
	horizon := now.Add(72 * time.Hour)
	current := now.Truncate(time.Hour).Add(time.Hour)
	for current.Before(horizon) && len(slots) < 2 {
		if isPreferred[current.Hour()] {
			confidence := float64(hourCounts[current.Hour()]) / float64(len(completed))
			if confidence > 0.9 {
				confidence = 0.9
			}
			slots = append(slots, TimeSlot{
				Start:      current,
				End:        current.Add(time.Hour),
				Confidence: confidence,
			})
		}
		current = current.Add(time.Hour)
	}

	if len(slots) < 2 {
		slot := now.Add(2 * time.Hour)
		slots = append(slots, TimeSlot{Start: slot, End: slot.Add(time.Hour), Confidence: 0.5})
	}

	reasoning := fmt.Sprintf("Based on user's historical completion patterns, preferred hours are %v", preferred)
	return slots, reasoning
}
