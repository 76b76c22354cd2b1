package services

import (
	"errors"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/utils"

	"gorm.io/gorm"
)

// TaskService 任务生命周期服务：状态机、计时、重复任务展开
type TaskService struct {
	journal *JournalService
}

func NewTaskService(journal *JournalService) *TaskService {
	return &TaskService{journal: journal}
}

// ownedTask 按所有者加载任务，不存在和不属于当前用户同样返回NotFound
func ownedTask(tx *gorm.DB, uid, id string, task *models.Task) error {
	if err := tx.Where("id = ? AND created_by_id = ?", id, uid).First(task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("任务不存在")
		}
		return Internal("查询任务失败", err)
	}
	return nil
}

// ownedTags 按所有者加载一组标签
func ownedTags(tx *gorm.DB, uid string, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ? AND created_by_id = ?", ids, uid).Find(&tags).Error; err != nil {
		return nil, Internal("查询标签失败", err)
	}
	if len(tags) != len(ids) {
		return nil, NotFound("标签不存在")
	}
	return tags, nil
}

// checkProject 校验项目归属
func checkProject(tx *gorm.DB, uid string, projectID *string) error {
	if projectID == nil {
		return nil
	}
	var project models.Project
	if err := tx.Where("id = ? AND created_by_id = ?", *projectID, uid).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("项目不存在")
		}
		return Internal("查询项目失败", err)
	}
	return nil
}

// Create 创建任务并写入首条状态记录
func (s *TaskService) Create(uid string, req *models.CreateTaskRequest) (*models.Task, error) {
	task := models.Task{
		ID:          utils.GenerateID(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		CreatedByID: uid,
	}

	if req.IsRecurring {
		raw, err := models.EncodeRecurrencePattern(req.RecurrencePattern)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		task.IsRecurring = true
		task.RecurrencePattern = &raw
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkProject(tx, uid, req.ProjectID); err != nil {
			return err
		}
		tags, err := ownedTags(tx, uid, req.TagIDs)
		if err != nil {
			return err
		}
		task.Tags = tags

		if err := tx.Create(&task).Error; err != nil {
			return Internal("创建任务失败", err)
		}
		// 创建时写入首条状态记录，fromStatus为空
		return appendHistory(tx, &task, "", task.Status, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, task.ID)
}

// appendHistory 追加一条状态变更记录
func appendHistory(tx *gorm.DB, task *models.Task, from, to, note string) error {
	row := models.TaskStatusHistory{
		ID:          utils.GenerateID(),
		TaskID:      task.ID,
		FromStatus:  from,
		ToStatus:    to,
		Note:        note,
		CreatedByID: task.CreatedByID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return Internal("写入状态记录失败", err)
	}
	return nil
}

// Get 按ID获取任务
func (s *TaskService) Get(uid, id string) (*models.Task, error) {
	var task models.Task
	err := config.DB.Preload("Tags").Preload("Project").
		Where("id = ? AND created_by_id = ?", id, uid).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("任务不存在")
		}
		return nil, Internal("查询任务失败", err)
	}
	return &task, nil
}

// List 游标分页查询任务列表
func (s *TaskService) List(uid string, req *models.ListTasksRequest) (*models.TaskListResponse, error) {
	limit := utils.NormalizeLimit(req.Limit)

	q := config.DB.Preload("Tags").Preload("Project").Where("created_by_id = ?", uid)
	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		q = q.Where("priority = ?", req.Priority)
	}
	if req.ProjectID != "" {
		q = q.Where("project_id = ?", req.ProjectID)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if req.DueAfter != nil {
		q = q.Where("due_date >= ?", *req.DueAfter)
	}
	if req.DueBefore != nil {
		q = q.Where("due_date < ?", *req.DueBefore)
	}
	if req.CompletedFrom != nil {
		q = q.Where("completed_at >= ?", *req.CompletedFrom)
	}
	if req.CompletedTo != nil {
		q = q.Where("completed_at < ?", *req.CompletedTo)
	}
	if req.Cursor != "" {
		cursor, err := utils.DecodeCursor(req.Cursor)
		if err != nil {
			return nil, BadRequest("无效的游标")
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.SortKey, cursor.SortKey, cursor.ID)
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&tasks).Error; err != nil {
		return nil, Internal("查询任务列表失败", err)
	}

	resp := &models.TaskListResponse{Items: tasks}
	if len(tasks) > limit {
		resp.Items = tasks[:limit]
		last := resp.Items[limit-1]
		resp.NextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return resp, nil
}

// Update 更新任务基础字段，状态变更走UpdateStatus
func (s *TaskService) Update(uid, id string, req *models.UpdateTaskRequest) (*models.Task, error) {
	if req.Priority != nil && *req.Priority != "" && !models.ValidTaskPriority(*req.Priority) {
		return nil, BadRequest("无效的优先级: " + *req.Priority)
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Type != nil {
			updates["type"] = *req.Type
		}
		if req.Priority != nil {
			if *req.Priority == "" {
				updates["priority"] = nil
			} else {
				updates["priority"] = *req.Priority
			}
		}
		if req.DueDate != nil {
			updates["due_date"] = *req.DueDate
		}
		if req.ProjectID != nil {
			if *req.ProjectID == "" {
				updates["project_id"] = nil
			} else {
				if err := checkProject(tx, uid, req.ProjectID); err != nil {
					return err
				}
				updates["project_id"] = *req.ProjectID
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&task).Updates(updates).Error; err != nil {
				return Internal("更新任务失败", err)
			}
		}
		if req.TagIDs != nil {
			tags, err := ownedTags(tx, uid, *req.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&task).Association("Tags").Replace(tags); err != nil {
				return Internal("更新任务标签失败", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// Delete 删除任务及其计时记录、状态记录和标签关联
func (s *TaskService) Delete(uid, id string) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return Internal("删除计时记录失败", err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskStatusHistory{}).Error; err != nil {
			return Internal("删除状态记录失败", err)
		}
		if err := tx.Model(&task).Association("Tags").Clear(); err != nil {
			return Internal("删除标签关联失败", err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return Internal("删除任务失败", err)
		}
		return nil
	})
}

// applyTransition 执行一次状态变更并追加状态记录。
// 进入done时写完成时间和计数并强制停止计时；离开done时清除完成时间。
func (s *TaskService) applyTransition(tx *gorm.DB, task *models.Task, to, note string) error {
	from := task.Status
	now := time.Now()
	updates := map[string]interface{}{"status": to}

	if to == models.TaskStatusDone {
		updates["completed_at"] = now
		updates["completed_count"] = task.CompletedCount + 1
	} else if task.CompletedAt != nil {
		updates["completed_at"] = nil
	}

	// 进入终止状态时强制停止计时，关闭打开的计时记录并累计用时
	if (to == models.TaskStatusDone || to == models.TaskStatusArchived) && task.IsTimerActive {
		elapsed := 0
		if task.TimerStartedAt != nil {
			elapsed = int(now.Sub(*task.TimerStartedAt).Seconds())
			if elapsed < 0 {
				elapsed = 0
			}
		}
		if err := tx.Model(&models.TimeEntry{}).
			Where("task_id = ? AND end_time IS NULL", task.ID).
			Updates(map[string]interface{}{"end_time": now, "duration": elapsed}).Error; err != nil {
			return Internal("关闭计时记录失败", err)
		}
		updates["total_time_spent"] = task.TotalTimeSpent + elapsed
		updates["is_timer_active"] = false
		updates["timer_started_at"] = nil
	}

	if err := tx.Model(task).Updates(updates).Error; err != nil {
		return Internal("更新任务状态失败", err)
	}
	return appendHistory(tx, task, from, to, note)
}

// UpdateStatus 显式状态变更。新旧状态相同按幂等处理，不写记录不产生副作用。
func (s *TaskService) UpdateStatus(uid, id, status, note string) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, BadRequest("无效的任务状态: " + status)
	}

	changedToDone := false
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if task.Status == status {
			return nil
		}
		changedToDone = status == models.TaskStatusDone
		return s.applyTransition(tx, &task, status, note)
	})
	if err != nil {
		return nil, err
	}

	if changedToDone {
		s.notifyTaskCompleted(uid)
	}
	return s.Get(uid, id)
}

// notifyTaskCompleted 任务完成后按用户配置触发日报生成，失败只记日志
func (s *TaskService) notifyTaskCompleted(uid string) {
	if s.journal == nil {
		return
	}
	result, err := s.journal.AutoGenerate(GenerateInput{
		UserID:          uid,
		RespectSettings: true,
		Trigger:         TriggerOnComplete,
	})
	if err != nil {
		config.Logger.Errorw("任务完成后生成日报失败", "error", err, "uid", uid)
		return
	}
	if result != nil && result.Success {
		config.Logger.Infow("任务完成后日报已更新",
			"uid", uid, "journalID", result.JournalID, "tasksCount", result.TasksCount)
	}
}

// Restart 重启已完成或已归档的任务，回到调用方指定状态（缺省todo）并清除完成时间
func (s *TaskService) Restart(uid, id, toStatus string) (*models.Task, error) {
	if toStatus == "" {
		toStatus = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(toStatus) ||
		toStatus == models.TaskStatusDone || toStatus == models.TaskStatusArchived {
		return nil, BadRequest("无效的重启目标状态: " + toStatus)
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if !task.IsTerminal() {
			return BadRequest("只有已完成或已归档的任务可以重启")
		}
		return s.applyTransition(tx, &task, toStatus, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// Archive 归档任务，已归档的任务不可重复归档
func (s *TaskService) Archive(uid, id string) (*models.Task, error) {
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if task.Status == models.TaskStatusArchived {
			return BadRequest("任务已归档")
		}
		return s.applyTransition(tx, &task, models.TaskStatusArchived, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// StartTimer 开始计时。同一用户全局至多一个运行中的计时器，
// 其他任务的计时会被强制关闭且不计入用时。
func (s *TaskService) StartTimer(uid, id string) (*models.Task, error) {
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if task.IsTimerActive {
			return BadRequest("该任务的计时器已在运行")
		}
		if task.IsTerminal() {
			return BadRequest("已完成或已归档的任务不能计时")
		}

		now := time.Now()
		// 强制关闭该用户其他打开的计时记录，不做用时累计
		if err := tx.Model(&models.TimeEntry{}).
			Where("created_by_id = ? AND end_time IS NULL", uid).
			Update("end_time", now).Error; err != nil {
			return Internal("关闭其他计时记录失败", err)
		}
		if err := tx.Model(&models.Task{}).
			Where("created_by_id = ? AND is_timer_active = ?", uid, true).
			Updates(map[string]interface{}{"is_timer_active": false, "timer_started_at": nil}).Error; err != nil {
			return Internal("重置其他计时状态失败", err)
		}

		entry := models.TimeEntry{
			ID:          utils.GenerateID(),
			TaskID:      task.ID,
			CreatedByID: uid,
			StartTime:   now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return Internal("创建计时记录失败", err)
		}

		updates := map[string]interface{}{
			"is_timer_active":  true,
			"timer_started_at": now,
		}
		// 想法状态的任务开始计时即进入进行中，该提升不写状态记录
		if task.Status == models.TaskStatusIdea {
			updates["status"] = models.TaskStatusInProgress
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return Internal("更新计时状态失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// closeTimer 关闭打开的计时记录并把本次用时累计到任务上，返回本次秒数
func closeTimer(tx *gorm.DB, task *models.Task, now time.Time) (int, error) {
	elapsed := 0
	if task.TimerStartedAt != nil {
		elapsed = int(now.Sub(*task.TimerStartedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
	}
	if err := tx.Model(&models.TimeEntry{}).
		Where("task_id = ? AND end_time IS NULL", task.ID).
		Updates(map[string]interface{}{"end_time": now, "duration": elapsed}).Error; err != nil {
		return 0, Internal("关闭计时记录失败", err)
	}
	if err := tx.Model(task).Updates(map[string]interface{}{
		"total_time_spent": task.TotalTimeSpent + elapsed,
		"is_timer_active":  false,
		"timer_started_at": nil,
	}).Error; err != nil {
		return 0, Internal("更新计时状态失败", err)
	}
	task.TotalTimeSpent += elapsed
	task.IsTimerActive = false
	task.TimerStartedAt = nil
	return elapsed, nil
}

// PauseTimer 暂停计时并累计用时，任务状态不变
func (s *TaskService) PauseTimer(uid, id string) (*models.Task, error) {
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if !task.IsTimerActive {
			return BadRequest("没有正在运行的计时器")
		}
		_, err := closeTimer(tx, &task, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// StopTimer 停止计时：按暂停的方式累计用时，再把任务置为完成
func (s *TaskService) StopTimer(uid, id string) (*models.Task, error) {
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if !task.IsTimerActive {
			return BadRequest("没有正在运行的计时器")
		}
		if _, err := closeTimer(tx, &task, time.Now()); err != nil {
			return err
		}
		return s.applyTransition(tx, &task, models.TaskStatusDone, "")
	})
	if err != nil {
		return nil, err
	}

	s.notifyTaskCompleted(uid)
	return s.Get(uid, id)
}

// SetRecurring 设置或清除重复规则
func (s *TaskService) SetRecurring(uid, id string, req *models.SetRecurringRequest) (*models.Task, error) {
	updates := map[string]interface{}{}
	if req.IsRecurring {
		if req.Pattern == nil {
			return nil, BadRequest("重复任务必须提供重复规则")
		}
		raw, err := models.EncodeRecurrencePattern(req.Pattern)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		updates["is_recurring"] = true
		updates["recurrence_pattern"] = raw
	} else {
		updates["is_recurring"] = false
		updates["recurrence_pattern"] = nil
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := ownedTask(tx, uid, id, &task); err != nil {
			return err
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return Internal("更新重复规则失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, id)
}

// GenerateNextInstance 展开重复任务的下一个实例。
// 新实例复制标题/描述/类型/优先级/项目/标签，回链到源任务，从todo开始。
func (s *TaskService) GenerateNextInstance(uid, id string) (*models.Task, error) {
	var next models.Task
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Preload("Tags").
			Where("id = ? AND created_by_id = ?", id, uid).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("任务不存在")
			}
			return Internal("查询任务失败", err)
		}
		if !task.IsRecurring || task.RecurrencePattern == nil {
			return BadRequest("任务未设置重复规则")
		}
		pattern, err := models.DecodeRecurrencePattern(*task.RecurrencePattern)
		if err != nil {
			return BadRequest(err.Error())
		}

		nextDue := pattern.NextFrom(time.Now())
		next = models.Task{
			ID:           utils.GenerateID(),
			Title:        task.Title,
			Description:  task.Description,
			Type:         task.Type,
			Status:       models.TaskStatusTodo,
			Priority:     task.Priority,
			DueDate:      &nextDue,
			ProjectID:    task.ProjectID,
			ParentTaskID: &task.ID,
			CreatedByID:  uid,
			Tags:         task.Tags,
		}
		if err := tx.Create(&next).Error; err != nil {
			return Internal("创建任务失败", err)
		}
		return appendHistory(tx, &next, "", next.Status, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(uid, next.ID)
}

// GetTimeEntries 获取任务的计时记录
func (s *TaskService) GetTimeEntries(uid, id string) ([]models.TimeEntry, error) {
	var task models.Task
	if err := ownedTask(config.DB, uid, id, &task); err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	if err := config.DB.Where("task_id = ?", id).
		Order("start_time DESC").Find(&entries).Error; err != nil {
		return nil, Internal("查询计时记录失败", err)
	}
	return entries, nil
}

// Stats 统计时间范围内创建的任务
func (s *TaskService) Stats(uid string, from, to *time.Time) (*models.TaskStatsResponse, error) {
	base := func() *gorm.DB {
		q := config.DB.Model(&models.Task{}).Where("created_by_id = ?", uid)
		if from != nil {
			q = q.Where("created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("created_at < ?", *to)
		}
		return q
	}

	stats := &models.TaskStatsResponse{
		StatusCounts:   map[string]int64{},
		PriorityCounts: map[string]int64{},
	}

	if err := base().Count(&stats.TotalTasks).Error; err != nil {
		return nil, Internal("统计任务失败", err)
	}
	if err := base().Where("status = ?", models.TaskStatusDone).Count(&stats.CompletedTasks).Error; err != nil {
		return nil, Internal("统计任务失败", err)
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks)
	}

	type groupRow struct {
		K     string
		Count int64
	}
	var statusRows []groupRow
	if err := base().Select("status AS k, COUNT(*) AS count").
		Group("status").Scan(&statusRows).Error; err != nil {
		return nil, Internal("统计任务失败", err)
	}
	for _, row := range statusRows {
		stats.StatusCounts[row.K] = row.Count
	}

	var priorityRows []groupRow
	if err := base().Where("priority IS NOT NULL").
		Select("priority AS k, COUNT(*) AS count").
		Group("priority").Scan(&priorityRows).Error; err != nil {
		return nil, Internal("统计任务失败", err)
	}
	for _, row := range priorityRows {
		stats.PriorityCounts[row.K] = row.Count
	}

	var total struct{ Total int64 }
	if err := base().Select("COALESCE(SUM(total_time_spent), 0) AS total").
		Scan(&total).Error; err != nil {
		return nil, Internal("统计任务失败", err)
	}
	stats.TotalTimeSpent = total.Total

	return stats, nil
}
