package reveal

import "fmt"

// Phase 描述单条消息的揭示生命周期：Idle → Revealing → Frozen。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRevealing
	PhaseFrozen
)

// Controller 驱动一条流式消息的逐帧揭示。它本身不持有时钟：
// 宿主在每个协作帧调用 Tick，使同一状态机无需真实帧时钟即可测试。
//
// 游标按 rune 计数、单调不减，仅在目标文本收缩（防御分支，正常流程不应出现）时归零重来。
type Controller struct {
	speed      int
	phase      Phase
	revealed   int
	target     string
	runes      []rune
	completed  bool
	detached   bool
	onComplete func()
}

// NewController 创建控制器。speed 必须为正整数，违反视为编程契约错误。
func NewController(speed int, onComplete func()) (*Controller, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("reveal speed must be positive, got %d", speed)
	}
	return &Controller{speed: speed, onComplete: onComplete}, nil
}

// SetTarget 更新目标文本。streaming=false 表示流式已结束：立即显示全文并冻结。
// 冻结后的后续文本变化直接生效，不再重播动画。
func (c *Controller) SetTarget(text string, streaming bool) {
	runes := []rune(text)
	if c.phase == PhaseFrozen {
		c.target = text
		c.runes = runes
		c.revealed = len(runes)
		return
	}
	if len(runes) < c.revealed {
		// 目标收缩：重置游标从头揭示。
		c.revealed = 0
	}
	c.target = text
	c.runes = runes
	if !streaming {
		c.freeze()
		return
	}
	if text != "" {
		c.phase = PhaseRevealing
	}
}

// RebaseTarget 在目标的前缀被上游消费（提升为媒体块）后换上新目标：
// 新旧目标都是同一原文的后缀，游标按两者长度差左移，已揭示的余量
// 不重播。目标变长（普通增量）时等价于 SetTarget 的流式分支。
func (c *Controller) RebaseTarget(text string) {
	runes := []rune(text)
	if c.phase == PhaseFrozen {
		c.target = text
		c.runes = runes
		c.revealed = len(runes)
		return
	}
	if consumed := len(c.runes) - len(runes); consumed > 0 {
		c.revealed -= consumed
		if c.revealed < 0 {
			c.revealed = 0
		}
	}
	c.target = text
	c.runes = runes
	if text != "" {
		c.phase = PhaseRevealing
	}
}

// Tick 前进一帧，返回是否还需要后续帧。
func (c *Controller) Tick() bool {
	if c.phase != PhaseRevealing {
		return false
	}
	c.revealed += c.speed
	if c.revealed >= len(c.runes) {
		c.freeze()
		return false
	}
	return true
}

// Visible 返回当前应显示的文本前缀。
func (c *Controller) Visible() string {
	if c.revealed >= len(c.runes) {
		return c.target
	}
	return string(c.runes[:c.revealed])
}

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) Revealed() int { return c.revealed }

// Detach 在消息离开会话时取消揭示；不触发完成回调。
func (c *Controller) Detach() {
	c.detached = true
	c.phase = PhaseFrozen
}

func (c *Controller) freeze() {
	c.revealed = len(c.runes)
	c.phase = PhaseFrozen
	if c.completed || c.detached {
		return
	}
	c.completed = true
	if c.onComplete != nil {
		c.onComplete()
	}
}

// Set 按消息 ID 管理控制器的生命周期，游标在消息仍在揭示时得以保留。
type Set struct {
	speed       int
	controllers map[string]*Controller
}

func NewSet(speed int) (*Set, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("reveal speed must be positive, got %d", speed)
	}
	return &Set{speed: speed, controllers: map[string]*Controller{}}, nil
}

// Acquire 返回消息对应的控制器，首次见到该消息时创建。
func (s *Set) Acquire(id string, onComplete func()) *Controller {
	if c, ok := s.controllers[id]; ok {
		return c
	}
	c, err := NewController(s.speed, onComplete)
	if err != nil {
		// speed 在 NewSet 已校验为正。
		panic(err)
	}
	s.controllers[id] = c
	return c
}

// SetSpeed 调整后续创建的控制器与所有现存控制器的揭示速度。
func (s *Set) SetSpeed(speed int) error {
	if speed <= 0 {
		return fmt.Errorf("reveal speed must be positive, got %d", speed)
	}
	s.speed = speed
	for _, c := range s.controllers {
		c.speed = speed
	}
	return nil
}

// Detach 取消并移除一条消息的控制器。
func (s *Set) Detach(id string) {
	if c, ok := s.controllers[id]; ok {
		c.Detach()
		delete(s.controllers, id)
	}
}

// DetachAll 清空全部控制器（会话被清除时）。
func (s *Set) DetachAll() {
	for id, c := range s.controllers {
		c.Detach()
		delete(s.controllers, id)
	}
}

// Visible 返回某条消息当前已揭示的文本前缀；消息未注册时 ok 为 false。
func (s *Set) Visible(id string) (string, bool) {
	c, ok := s.controllers[id]
	if !ok {
		return "", false
	}
	return c.Visible(), true
}

// Active 报告是否存在仍在揭示中的控制器，用于宿主决定是否继续调度帧。
func (s *Set) Active() bool {
	for _, c := range s.controllers {
		if c.Phase() == PhaseRevealing {
			return true
		}
	}
	return false
}

// Tick 推进所有揭示中的控制器一帧，返回是否还需要后续帧。
func (s *Set) Tick() bool {
	more := false
	for _, c := range s.controllers {
		if c.Tick() {
			more = true
		}
	}
	return more
}
