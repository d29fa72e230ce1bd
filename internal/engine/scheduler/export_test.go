package scheduler

import (
	"maps"

	"go.trai.ch/pixi/internal/core/domain"
)

// GetTaskStatusMap returns a copy of the internal target status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetTaskStatusMap() map[domain.Target]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.taskStatus)
}
