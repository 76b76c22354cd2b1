package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type JournalController struct {
	journalService *services.JournalService
}

func NewJournalController(journalService *services.JournalService) *JournalController {
	return &JournalController{journalService: journalService}
}

// ownedJournal 按所有者加载日志
func ownedJournal(tx *gorm.DB, uid, id string, journal *models.Journal) error {
	if err := tx.Where("id = ? AND created_by_id = ?", id, uid).First(journal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("日志不存在")
		}
		return services.Internal("查询日志失败", err)
	}
	return nil
}

// Create 严格创建日志，当天已有日志时返回冲突
func (jc *JournalController) Create(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journal := models.Journal{
		ID:           utils.GenerateID(),
		EntryDate:    utils.DayStart(req.EntryDate),
		Content:      req.Content,
		TemplateName: req.TemplateName,
		CreatedByID:  uid,
	}
	// 唯一索引 (entry_date, created_by_id) 兜底，并发创建也只会成功一次
	if err := config.DB.Create(&journal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, services.Conflict("当天日志已存在"))
			return
		}
		respondError(c, services.Internal("创建日志失败", err))
		return
	}
	c.JSON(http.StatusOK, journal)
}

// GetByDate 按日期获取日志
func (jc *JournalController) GetByDate(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	raw := c.Query("date")
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if date, err = time.ParseInLocation("2006-01-02", raw, time.Local); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期格式"})
			return
		}
	}

	var journal models.Journal
	err = config.DB.Where("entry_date = ? AND created_by_id = ?", utils.DayStart(date), uid).
		First(&journal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, services.NotFound("日志不存在"))
			return
		}
		respondError(c, services.Internal("查询日志失败", err))
		return
	}
	c.JSON(http.StatusOK, journal)
}

// List 游标分页查询日志列表，按日期倒序
func (jc *JournalController) List(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	limit := utils.NormalizeLimit(0)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = utils.NormalizeLimit(parsed)
		}
	}

	q := config.DB.Where("created_by_id = ?", uid)
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := utils.DecodeCursor(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的游标"})
			return
		}
		q = q.Where("entry_date < ? OR (entry_date = ? AND id < ?)",
			cursor.SortKey, cursor.SortKey, cursor.ID)
	}

	var journals []models.Journal
	if err := q.Order("entry_date DESC, id DESC").Limit(limit + 1).Find(&journals).Error; err != nil {
		respondError(c, services.Internal("查询日志列表失败", err))
		return
	}

	resp := models.JournalListResponse{Items: journals}
	if len(journals) > limit {
		resp.Items = journals[:limit]
		last := resp.Items[limit-1]
		resp.NextCursor = utils.EncodeCursor(last.EntryDate, last.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// Get 按ID获取日志
func (jc *JournalController) Get(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var journal models.Journal
	if err := ownedJournal(config.DB, uid, c.Param("id"), &journal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journal)
}

// Update 更新日志
func (jc *JournalController) Update(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var journal models.Journal
	if err := ownedJournal(config.DB, uid, c.Param("id"), &journal); err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.TemplateName != nil {
		updates["template_name"] = *req.TemplateName
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&journal).Updates(updates).Error; err != nil {
			respondError(c, services.Internal("更新日志失败", err))
			return
		}
	}
	c.JSON(http.StatusOK, journal)
}

// Delete 删除日志
func (jc *JournalController) Delete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var journal models.Journal
	if err := ownedJournal(config.DB, uid, c.Param("id"), &journal); err != nil {
		respondError(c, err)
		return
	}
	if err := config.DB.Delete(&journal).Error; err != nil {
		respondError(c, services.Internal("删除日志失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "日志已删除"})
}

// Upsert 按(日期,用户)创建或整体替换日志
func (jc *JournalController) Upsert(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journal, err := jc.journalService.Upsert(uid, req.EntryDate, req.Content, req.TemplateName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journal)
}

// Search 日志内容模糊搜索
func (jc *JournalController) Search(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少搜索关键词"})
		return
	}

	var journals []models.Journal
	if err := config.DB.Where("created_by_id = ? AND content LIKE ?", uid, "%"+keyword+"%").
		Order("entry_date DESC").Limit(50).Find(&journals).Error; err != nil {
		respondError(c, services.Internal("搜索日志失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": journals})
}

// journalStreaks 由日期集合计算当前连续天数和最长连续天数
func journalStreaks(dates []time.Time, today time.Time) (int, int) {
	if len(dates) == 0 {
		return 0, 0
	}

	seen := map[string]bool{}
	for _, d := range dates {
		seen[utils.DayStart(d).Format("2006-01-02")] = true
	}

	// 当前连续：从今天（或昨天）往前数
	current := 0
	day := utils.DayStart(today)
	if !seen[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	for seen[day.Format("2006-01-02")] {
		current++
		day = day.AddDate(0, 0, -1)
	}

	// 最长连续：在所有日期上扫描
	longest, run := 0, 0
	day = utils.DayStart(today)
	earliest := day
	for _, d := range dates {
		if s := utils.DayStart(d); s.Before(earliest) {
			earliest = s
		}
	}
	for d := earliest; !d.After(utils.DayStart(today)); d = d.AddDate(0, 0, 1) {
		if seen[d.Format("2006-01-02")] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return current, longest
}

// Stats 日志统计
func (jc *JournalController) Stats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	stats := models.JournalStatsResponse{}
	if err := config.DB.Model(&models.Journal{}).Where("created_by_id = ?", uid).
		Count(&stats.TotalEntries).Error; err != nil {
		respondError(c, services.Internal("统计日志失败", err))
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	if err := config.DB.Model(&models.Journal{}).
		Where("created_by_id = ? AND entry_date >= ?", uid, monthStart).
		Count(&stats.EntriesThisMonth).Error; err != nil {
		respondError(c, services.Internal("统计日志失败", err))
		return
	}

	var dates []time.Time
	if err := config.DB.Model(&models.Journal{}).Where("created_by_id = ?", uid).
		Pluck("entry_date", &dates).Error; err != nil {
		respondError(c, services.Internal("统计日志失败", err))
		return
	}
	stats.CurrentStreak, stats.LongestStreak = journalStreaks(dates, now)
	c.JSON(http.StatusOK, stats)
}

// Timeline 按年（可选月）返回日志时间线
func (jc *JournalController) Timeline(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1970 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的年份"})
		return
	}

	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)
	if raw := c.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的月份"})
			return
		}
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		end = start.AddDate(0, 1, 0)
	}

	var journals []models.Journal
	if err := config.DB.Where("created_by_id = ? AND entry_date >= ? AND entry_date < ?",
		uid, start, end).Order("entry_date").Find(&journals).Error; err != nil {
		respondError(c, services.Internal("查询日志时间线失败", err))
		return
	}

	entries := make([]models.JournalTimelineEntry, 0, len(journals))
	for _, journal := range journals {
		entries = append(entries, models.JournalTimelineEntry{
			ID:            journal.ID,
			EntryDate:     journal.EntryDate,
			TemplateName:  journal.TemplateName,
			ContentLength: len([]rune(journal.Content)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// TemplateStats 模板使用统计
func (jc *JournalController) TemplateStats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	type groupRow struct {
		TemplateName string
		Count        int64
	}
	var rows []groupRow
	if err := config.DB.Model(&models.Journal{}).Where("created_by_id = ?", uid).
		Select("template_name, COUNT(*) AS count").Group("template_name").
		Order("count DESC").Scan(&rows).Error; err != nil {
		respondError(c, services.Internal("统计模板使用失败", err))
		return
	}

	items := make([]models.JournalTemplateStat, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.JournalTemplateStat{
			TemplateName: row.TemplateName,
			Count:        row.Count,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// WritingHabits 最近N天的写作习惯统计
func (jc *JournalController) WritingHabits(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的天数"})
			return
		}
		days = parsed
	}

	now := time.Now()
	since := utils.DayStart(now).AddDate(0, 0, -(days - 1))

	var journals []models.Journal
	if err := config.DB.Where("created_by_id = ? AND entry_date >= ?", uid, since).
		Order("entry_date").Find(&journals).Error; err != nil {
		respondError(c, services.Internal("统计写作习惯失败", err))
		return
	}

	resp := models.WritingHabitsResponse{Days: days}
	dates := make([]time.Time, 0, len(journals))
	totalLength := 0
	for _, journal := range journals {
		dates = append(dates, journal.EntryDate)
		totalLength += len([]rune(journal.Content))
	}
	resp.ActiveDays = len(dates)
	if len(journals) > 0 {
		resp.AverageLength = float64(totalLength) / float64(len(journals))
	}
	resp.CurrentStreak, resp.LongestStreak = journalStreaks(dates, now)
	c.JSON(http.StatusOK, resp)
}

// BatchDelete 批量删除日志
func (jc *JournalController) BatchDelete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := models.BatchOperationResponse{}
	for _, id := range req.Ids {
		var journal models.Journal
		if err := ownedJournal(config.DB, uid, id, &journal); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, services.AsError(err).Message)
			continue
		}
		if err := config.DB.Delete(&journal).Error; err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, "删除日志失败")
			continue
		}
		resp.Succeeded++
	}
	c.JSON(http.StatusOK, resp)
}

// AutoGenerate 手动触发日报生成
func (jc *JournalController) AutoGenerate(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.AutoGenerateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.GenerateInput{
		UserID:          uid,
		Force:           req.Force,
		TemplateName:    req.TemplateName,
		RespectSettings: !req.Force,
		Trigger:         services.TriggerManual,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	result, err := jc.journalService.AutoGenerate(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
