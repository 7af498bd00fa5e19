package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"warehub/internal/hardware"
)

// PressDebounce is how close two completion presses for the same worker may be
// before the second is ignored
const PressDebounce = 300 * time.Millisecond

var (
	ErrNoMembers     = errors.New("roster has no members")
	ErrUnknownTag    = errors.New("unknown tag")
	ErrUnknownWorker = errors.New("unknown worker")
	ErrNotPresent    = errors.New("worker is not present")
	ErrNoTask        = errors.New("no task to complete")
	ErrDebounced     = errors.New("press ignored")
)

// Member describes one person on the roster
type Member struct {
	Name string
	UID  string
}

// DefaultMembers is the two-person crew the terminal ships with
func DefaultMembers() []Member {
	return []Member{
		{Name: "worker1", UID: "849156397443"},
		{Name: "worker2", UID: "543047530896"},
	}
}

type memberState struct {
	Member
	present   bool
	tasks     []string
	lastPress time.Time
}

// Roster tracks attendance and the task queue of every member
type Roster struct {
	mu      sync.Mutex
	members []*memberState
	display hardware.Display
	now     func() time.Time
	logger  *slog.Logger
}

func NewRoster(members []Member, display hardware.Display) *Roster {
	r := &Roster{
		display: display,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, m := range members {
		r.members = append(r.members, &memberState{Member: m})
	}
	return r
}

func (r *Roster) byName(name string) *memberState {
	for _, m := range r.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Assign queues task on the member with the fewest pending tasks.
// Ties go to the member listed first.
func (r *Roster) Assign(task string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) == 0 {
		return "", ErrNoMembers
	}

	target := r.members[0]
	for _, m := range r.members[1:] {
		if len(m.tasks) < len(target.tasks) {
			target = m
		}
	}
	target.tasks = append(target.tasks, task)

	r.display.Show(fmt.Sprintf("%s: + task", target.Name))
	r.logger.Info("task_assigned",
		"worker", target.Name,
		"task", task,
		"queue_len", len(target.tasks),
	)
	return target.Name, nil
}

// ToggleAttendance flips the attendance of the member holding uid and
// returns the member name and the new state
func (r *Roster) ToggleAttendance(uid string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.UID != uid {
			continue
		}
		m.present = !m.present
		if m.present {
			r.display.Show("Work start")
		} else {
			r.display.Show("Work finish")
		}
		r.logger.Info("attendance_toggled", "worker", m.Name, "uid", uid, "present", m.present)
		return m.Name, m.present, nil
	}

	r.display.Show("Unknown card")
	r.logger.Warn("unknown_tag", "uid", uid)
	return "", false, fmt.Errorf("%w: %s", ErrUnknownTag, uid)
}

// Complete handles the done button of name. The oldest queued task is removed
// and returned.
func (r *Roster) Complete(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.byName(name)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownWorker, name)
	}

	now := r.now()
	if !m.lastPress.IsZero() && now.Sub(m.lastPress) < PressDebounce {
		return "", ErrDebounced
	}
	m.lastPress = now

	if !m.present {
		r.display.Show("He didn't come")
		r.logger.Info("completion_while_absent", "worker", name)
		return "", fmt.Errorf("%w: %s", ErrNotPresent, name)
	}

	if len(m.tasks) == 0 {
		r.display.Show(fmt.Sprintf("%s: no task", name))
		return "", ErrNoTask
	}

	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	r.display.Show(fmt.Sprintf("%s: done", name))
	r.logger.Info("task_completed", "worker", name, "task", task, "remaining", len(m.tasks))

	if len(m.tasks) == 0 {
		r.display.Show(fmt.Sprintf("%s: no task", name))
	}
	return task, nil
}

// Tasks returns a copy of the queue of name, oldest first
func (r *Roster) Tasks(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.byName(name); m != nil {
		return append([]string(nil), m.tasks...)
	}
	return nil
}

func (r *Roster) Present(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byName(name)
	return m != nil && m.present
}
