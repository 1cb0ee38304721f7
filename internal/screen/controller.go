package screen

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// Controller drives one mounted quiz screen: the once-per-second
// countdown ticker, the one-answer-per-question debounce, the deferred
// advance to the next question, and the cached per-question answer
// order. It is the only component allowed to call TickTimer.
type Controller struct {
	service      *app.SessionService
	tickInterval time.Duration
	advanceDelay time.Duration
	onFinish     func()

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	finished bool
	selected map[int]bool
	choices  map[int][]string
	rnd      *rand.Rand
}

// NewController builds a controller with the production timings: one
// tick per second and a 600ms pause after an answer before advancing.
// onFinish fires exactly once when the session reaches its terminal
// state while the ticker runs; it may be nil.
func NewController(service *app.SessionService, onFinish func()) *Controller {
	return NewControllerWithTiming(service, onFinish, time.Second, 600*time.Millisecond)
}

// NewControllerWithTiming is test-only for compressed timings.
func NewControllerWithTiming(service *app.SessionService, onFinish func(), tickInterval, advanceDelay time.Duration) *Controller {
	return &Controller{
		service:      service,
		tickInterval: tickInterval,
		advanceDelay: advanceDelay,
		onFinish:     onFinish,
		selected:     make(map[int]bool),
		choices:      make(map[int][]string),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the countdown ticker. Idempotent while running, so a
// remount never spawns a second ticker.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.run(stop)
}

func (c *Controller) run(stop chan struct{}) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.service.TickTimer()
			if c.service.View().IsFinished {
				c.finish()
				return
			}
		}
	}
}

// Stop halts the ticker. Idempotent and safe on every exit path,
// including navigation away and finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.stopLocked()
	already := c.finished
	c.finished = true
	c.mu.Unlock()

	if !already && c.onFinish != nil {
		c.onFinish()
	}
}

// SelectAnswer records the player's pick for the current question and
// schedules the advance to the next one. A second pick for the same
// question is rejected until the screen has advanced.
func (c *Controller) SelectAnswer(answer string) error {
	snapshot := c.service.Snapshot()
	if !snapshot.Active() {
		return domain.ErrNoActiveSession
	}
	index := snapshot.CurrentIndex

	c.mu.Lock()
	if c.selected[index] {
		c.mu.Unlock()
		return domain.ErrAnswerLocked
	}
	c.selected[index] = true
	c.mu.Unlock()

	if err := c.service.AnswerQuestion(answer); err != nil {
		c.mu.Lock()
		delete(c.selected, index)
		c.mu.Unlock()
		return err
	}

	// The answer is already durably recorded; the pause is
	// presentation only.
	time.AfterFunc(c.advanceDelay, func() {
		if err := c.service.NextQuestion(); err != nil {
			return
		}
		if c.service.View().IsFinished {
			c.finish()
		}
	})
	return nil
}

// Choices returns the displayed answer order for one question:
// correct and incorrect answers shuffled once, then cached by question
// index so the order holds steady across timer ticks.
func (c *Controller) Choices(index int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.choices[index]; ok {
		return cached
	}

	snapshot := c.service.Snapshot()
	if index < 0 || index >= len(snapshot.Questions) {
		return nil
	}
	q := snapshot.Questions[index]

	all := make([]string, 0, len(q.IncorrectAnswers)+1)
	all = append(all, q.IncorrectAnswers...)
	all = append(all, q.CorrectAnswer)
	c.rnd.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	c.choices[index] = all
	return all
}

// Reset drops per-screen state (answer locks, cached choice orders,
// the finish latch) and stops any running ticker. Call when a new quiz
// starts or the session is reset.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.finished = false
	c.selected = make(map[int]bool)
	c.choices = make(map[int][]string)
}
