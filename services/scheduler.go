package services

import (
	"context"
	"sync"
	"time"

	"DoneflowGo/config"
)

// Scheduler 定时日报触发器。每个tick扫描开启了定时生成的用户，
// 命中配置时刻（HH:MM，本地时间）时触发当天的日报生成。
// 同一用户同一天的定时触发通过Redis SETNX去重。
type Scheduler struct {
	journal  *JournalService
	settings *SettingsService
	interval time.Duration

	mu       sync.Mutex
	running  bool
	lastTick time.Time
	runs     int64
	failures int64

	stop chan struct{}
	wg   sync.WaitGroup
}

// SchedulerStatus 调度器状态快照
type SchedulerStatus struct {
	Running  bool      `json:"running"`
	Interval string    `json:"interval"`
	LastTick time.Time `json:"lastTick"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
}

// NewScheduler 创建调度器
func NewScheduler(journal *JournalService, settings *SettingsService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		journal:  journal,
		settings: settings,
		interval: interval,
	}
}

// Start 启动调度循环。Stop之后可以再次Start，每轮使用新的停止信号。
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				s.tick(now)
			case <-stop:
				return
			}
		}
	}()
	config.Logger.Infow("日报调度器已启动", "interval", s.interval.String())
}

// Stop 停止调度循环
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop := s.stop
	s.mu.Unlock()
	close(stop)
}

// Wait 等待调度循环退出
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Status 返回状态快照
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		Running:  s.running,
		Interval: s.interval.String(),
		LastTick: s.lastTick,
		Runs:     s.runs,
		Failures: s.failures,
	}
}

// tick 扫描一轮，触发配置时刻等于当前HH:MM的用户
func (s *Scheduler) tick(now time.Time) {
	s.mu.Lock()
	s.lastTick = now
	s.mu.Unlock()

	entries, err := s.settings.ListScheduled()
	if err != nil {
		config.Logger.Errorw("调度器查询用户配置失败", "error", err)
		return
	}

	hhmm := now.Local().Format("15:04")
	for _, entry := range entries {
		if entry.Value.AutoJournal.ScheduleTime != hhmm {
			continue
		}
		if !s.acquireDaily(entry.UserID, now) {
			continue
		}
		s.generateFor(entry.UserID, now)
	}
}

// acquireDaily 每用户每天的去重锁，Redis不可用时直接放行
func (s *Scheduler) acquireDaily(uid string, now time.Time) bool {
	if config.RedisClient == nil {
		return true
	}
	key := "journal_gen:" + uid + ":" + now.Local().Format("2006-01-02")
	ok, err := config.RedisClient.SetNX(context.Background(), key, 1, 26*time.Hour).Result()
	if err != nil {
		config.Logger.Errorw("调度去重锁获取失败，放行", "error", err, "uid", uid)
		return true
	}
	return ok
}

// generateFor 为单个用户执行一次定时生成
func (s *Scheduler) generateFor(uid string, now time.Time) {
	result, err := s.journal.AutoGenerate(GenerateInput{
		UserID:          uid,
		Date:            now,
		RespectSettings: true,
		Trigger:         TriggerScheduled,
	})

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		config.Logger.Errorw("定时日报生成失败", "error", err, "uid", uid)
		return
	}
	config.Logger.Infow("定时日报生成完成",
		"uid", uid, "success", result.Success,
		"tasksCount", result.TasksCount, "message", result.Message)
}

// RunAll 手动触发：为所有开启定时生成的用户立即生成指定日期的日报，
// 忽略HH:MM匹配。由内部接口调用。
func (s *Scheduler) RunAll(date time.Time) (int, int) {
	entries, err := s.settings.ListScheduled()
	if err != nil {
		config.Logger.Errorw("调度器查询用户配置失败", "error", err)
		return 0, 0
	}

	succeeded, failed := 0, 0
	for _, entry := range entries {
		result, err := s.journal.AutoGenerate(GenerateInput{
			UserID:          entry.UserID,
			Date:            date,
			RespectSettings: true,
			Trigger:         TriggerScheduled,
		})
		s.mu.Lock()
		s.runs++
		s.mu.Unlock()
		if err != nil {
			s.mu.Lock()
			s.failures++
			s.mu.Unlock()
			failed++
			config.Logger.Errorw("手动触发日报生成失败", "error", err, "uid", entry.UserID)
			continue
		}
		if result.Success {
			succeeded++
		}
	}
	return succeeded, failed
}
