package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medimate/internal/medication"
)

var (
	// ErrMedicationNotFound 在指定药品不存在时返回
	ErrMedicationNotFound = errors.New("medication not found")
	// ErrMedicationNameRequired 在药品名称为空时返回
	ErrMedicationNameRequired = errors.New("medication name is required")
	// ErrInvalidTimeOfDay 当时间不是 HH:mm 时返回
	ErrInvalidTimeOfDay = medication.ErrInvalidTimeOfDay
	// ErrInvalidFrequency 当频率标签未知时返回
	ErrInvalidFrequency = medication.ErrInvalidFrequency
)

// defaultHistoryLimit 对应历史页展示的最近记录条数
const defaultHistoryLimit = 10

// SnapshotPersister 为药品列表与服药记录的持久化依赖。
type SnapshotPersister interface {
	Load(ctx context.Context) (medication.State, error)
	SaveMedications(ctx context.Context, meds []medication.Medication) error
	SaveRecords(ctx context.Context, records []medication.IntakeRecord) error
}

// MedicationInput 定义创建药品时可配置字段
type MedicationInput struct {
	Name         string
	Dosage       string
	Instructions string
	Frequency    string
	Times        []string
	Color        string
}

// ScheduleView 为某一天的服药计划
type ScheduleView struct {
	Date            string
	MedicationCount int
	Items           []medication.ScheduledInstance
}

// MedicationService 持有全部应用状态，是唯一的写入方。
// 状态迁移先计算新状态，持久化成功后再整体替换。
type MedicationService struct {
	store  SnapshotPersister
	now    func() time.Time
	counts medication.Predicate

	mu    sync.RWMutex
	state medication.State
}

// NewMedicationService 构造 MedicationService，需要调用 Load 读取已保存的数据。
func NewMedicationService(store SnapshotPersister) *MedicationService {
	return &MedicationService{
		store:  store,
		now:    time.Now,
		counts: medication.CountsTaken,
	}
}

// SetClock 替换时间来源，主要用于测试。
func (s *MedicationService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// SetCountPredicate 指定统计时计入的记录。
func (s *MedicationService) SetCountPredicate(counts medication.Predicate) {
	if counts == nil {
		counts = medication.CountsTaken
	}
	s.counts = counts
}

// Load 从存储读取两份快照。
func (s *MedicationService) Load(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load medications: %w", err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Snapshot 返回当前状态。状态只会被整体替换，调用方不得修改返回的切片。
func (s *MedicationService) Snapshot() medication.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// List 返回所有药品，按添加顺序
func (s *MedicationService) List() []medication.Medication {
	state := s.Snapshot()
	return append([]medication.Medication(nil), state.Medications...)
}

// Get 根据 ID 获取药品
func (s *MedicationService) Get(id string) (medication.Medication, error) {
	med, ok := s.Snapshot().FindMedication(strings.TrimSpace(id))
	if !ok {
		return medication.Medication{}, ErrMedicationNotFound
	}
	return med, nil
}

// Create 新建药品并持久化
func (s *MedicationService) Create(ctx context.Context, input MedicationInput) (medication.Medication, error) {
	med, err := buildMedication(input)
	if err != nil {
		return medication.Medication{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.AddMedication(med)
	if err := s.store.SaveMedications(ctx, next.Medications); err != nil {
		return medication.Medication{}, fmt.Errorf("create medication: %w", err)
	}
	s.state = next
	return med, nil
}

// ConfirmDose 记录一次服药。不做去重，同一时段确认两次会产生两条记录。
func (s *MedicationService) ConfirmDose(ctx context.Context, medicationID, scheduledTime string) (medication.IntakeRecord, error) {
	medicationID = strings.TrimSpace(medicationID)

	slot := strings.TrimSpace(scheduledTime)
	if slot != "" {
		normalized, err := medication.NormalizeTimeOfDay(slot)
		if err != nil {
			return medication.IntakeRecord{}, err
		}
		slot = normalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.FindMedication(medicationID); !ok {
		return medication.IntakeRecord{}, ErrMedicationNotFound
	}

	record := medication.Confirm(medicationID, slot, s.now())
	next := s.state.RecordIntake(record)
	if err := s.store.SaveRecords(ctx, next.Records); err != nil {
		return medication.IntakeRecord{}, fmt.Errorf("record intake: %w", err)
	}
	s.state = next
	return record, nil
}

// Today 返回指定日期（YYYY-MM-DD）的服药计划，date 为空时使用今天。
func (s *MedicationService) Today(date string) ScheduleView {
	date = strings.TrimSpace(date)
	if date == "" {
		date = medication.Today(s.now())
	}

	state := s.Snapshot()
	return ScheduleView{
		Date:            date,
		MedicationCount: len(state.Medications),
		Items:           medication.Project(state.Medications, state.Records, date),
	}
}

// Stats 汇总服药统计
func (s *MedicationService) Stats() medication.AdherenceStats {
	return medication.Aggregate(s.Snapshot().Records, s.counts)
}

// History 返回最近的服药记录，limit<=0 时使用默认条数
func (s *MedicationService) History(limit int) []medication.HistoryEntry {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.Snapshot().History(limit)
}

func buildMedication(input MedicationInput) (medication.Medication, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return medication.Medication{}, ErrMedicationNameRequired
	}

	frequency, err := medication.ParseFrequency(input.Frequency)
	if err != nil {
		return medication.Medication{}, err
	}

	times, err := medication.NormalizeTimes(input.Times)
	if err != nil {
		return medication.Medication{}, err
	}
	if len(times) == 0 && frequency == medication.FrequencyDaily {
		times = []string{medication.DefaultTime}
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = medication.Palette[0]
	}

	return medication.Medication{
		ID:           uuid.NewString(),
		Name:         name,
		Dosage:       strings.TrimSpace(input.Dosage),
		Instructions: strings.TrimSpace(input.Instructions),
		Frequency:    frequency,
		Times:        times,
		Color:        color,
		Icon:         medication.DefaultIcon,
	}, nil
}
