package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OutbreakState represents the current state of an outbreak watch for a
// disease category
type OutbreakState struct {
	Status        string    `json:"status"` // CLEAR, PENDING_OUTBREAK, OUTBREAK_ACTIVE
	FirstDetected time.Time `json:"first_detected"`
	LastChecked   time.Time `json:"last_checked"`
	Slope         float64   `json:"slope"`
	LastCount     float64   `json:"last_count"`
	OutbreakID    int64     `json:"outbreak_id,omitempty"`
}

const (
	OutbreakStateClear   = "CLEAR"
	OutbreakStatePending = "PENDING_OUTBREAK"
	OutbreakStateActive  = "OUTBREAK_ACTIVE"
)

// StateManager manages outbreak states in Redis
type StateManager struct {
	redis *redis.Client
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient *redis.Client) *StateManager {
	return &StateManager{redis: redisClient}
}

// GetState retrieves the outbreak state for a disease category
func (sm *StateManager) GetState(ctx context.Context, category string) (*OutbreakState, error) {
	key := fmt.Sprintf("outbreak_state:%s", category)

	data, err := sm.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		// No state exists, return CLEAR state
		return &OutbreakState{
			Status: OutbreakStateClear,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state OutbreakState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// SetState saves the outbreak state for a disease category
func (sm *StateManager) SetState(ctx context.Context, category string, state *OutbreakState) error {
	key := fmt.Sprintf("outbreak_state:%s", category)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Expire after 7 days to auto-cleanup stale states
	if err := sm.redis.Set(ctx, key, data, 7*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}

	return nil
}

// DeleteState removes the outbreak state (returns to CLEAR)
func (sm *StateManager) DeleteState(ctx context.Context, category string) error {
	key := fmt.Sprintf("outbreak_state:%s", category)
	return sm.redis.Del(ctx, key).Err()
}

// GetAllStates returns all tracked outbreak states (for monitoring)
func (sm *StateManager) GetAllStates(ctx context.Context) (map[string]*OutbreakState, error) {
	pattern := "outbreak_state:*"

	keys, err := sm.redis.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, err
	}

	states := make(map[string]*OutbreakState)
	for _, key := range keys {
		data, err := sm.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var state OutbreakState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			continue
		}

		states[key] = &state
	}

	return states, nil
}
