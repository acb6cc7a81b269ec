package repository_test

import (
	"errors"
	"testing"
	"time"

	"backend/internal/app/ds"
	"backend/internal/app/repository"
	"backend/internal/app/testutil"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func newLotTransfer() (*ds.WorkRequest, []ds.RequestLot) {
	req := &ds.WorkRequest{
		Kind:        ds.KindLotTransfer,
		Requester:   "alice",
		Priority:    ds.PriorityP1,
		RequestDate: time.Now(),
	}
	lots := []ds.RequestLot{{LotID: "L1", UnitsQuantity: intPtr(5)}}
	return req, lots
}

func TestCreateRequestRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, lots := newLotTransfer()
	id, err := repo.CreateRequest(req, lots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected assigned id")
	}

	stored, err := repo.GetRequestByID(id)
	if err != nil {
		t.Fatalf("GetRequestByID failed: %v", err)
	}
	if stored.Status != ds.StatusNew {
		t.Fatalf("expected initial status %q, got %q", ds.StatusNew, stored.Status)
	}

	storedLots, err := repo.GetRequestLots(id)
	if err != nil {
		t.Fatalf("GetRequestLots failed: %v", err)
	}
	if len(storedLots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(storedLots))
	}
	if storedLots[0].LotID != "L1" || *storedLots[0].UnitsQuantity != 5 {
		t.Fatalf("lot not stored correctly: %+v", storedLots[0])
	}

	history, err := repo.GetRequestHistory(id)
	if err != nil {
		t.Fatalf("GetRequestHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("fresh request must have empty history, got %d entries", len(history))
	}
}

func TestCreateSamplingRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	release := time.Now().AddDate(0, 0, 7)
	req := &ds.WorkRequest{
		Kind:            ds.KindSampling,
		Requester:       "bob",
		Priority:        ds.PriorityP2,
		RequestDate:     time.Now(),
		SamplingType:    strPtr("RA"),
		ProjectName:     strPtr("Phoenix"),
		QualReleaseDate: &release,
	}
	samplingLots := []ds.RequestSamplingLot{{
		LotID:           "SL1",
		UnitsQuantity:   3,
		ReliabilityTest: "HTOL",
		TestCondition:   "125C/1000h",
		AttributeTo:     "QA",
	}}

	id, err := repo.CreateRequest(req, nil, samplingLots)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	storedSampling, err := repo.GetRequestSamplingLots(id)
	if err != nil {
		t.Fatalf("GetRequestSamplingLots failed: %v", err)
	}
	if len(storedSampling) != 1 {
		t.Fatalf("expected 1 sampling lot, got %d", len(storedSampling))
	}

	// Таблица другой формы элементов остаётся пустой
	storedLots, err := repo.GetRequestLots(id)
	if err != nil {
		t.Fatalf("GetRequestLots failed: %v", err)
	}
	if len(storedLots) != 0 {
		t.Fatalf("sampling request must not have plain lots, got %d", len(storedLots))
	}
}

func TestCreateRequestRollbackOnChildFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, _ := newLotTransfer()
	// Дубликат первичного ключа ломает bulk insert дочерних строк
	// уже после вставки родителя
	lots := []ds.RequestLot{
		{ID: 7, LotID: "L1"},
		{ID: 7, LotID: "L2"},
	}

	if _, err := repo.CreateRequest(req, lots, nil); err == nil {
		t.Fatal("expected error from child insert")
	}

	var requestCount, lotCount int64
	db.Model(&ds.WorkRequest{}).Count(&requestCount)
	db.Model(&ds.RequestLot{}).Count(&lotCount)
	if requestCount != 0 {
		t.Fatalf("parent row must be rolled back, found %d", requestCount)
	}
	if lotCount != 0 {
		t.Fatalf("child rows must be rolled back, found %d", lotCount)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	err := repo.UpdateRequestStatus(9999, ds.StatusInProgress, nil, nil)
	if !errors.Is(err, repository.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestUpdateStatusHistoryChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, lots := newLotTransfer()
	id, err := repo.CreateRequest(req, lots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if err := repo.UpdateRequestStatus(id, ds.StatusInProgress, strPtr("carol"), nil); err != nil {
		t.Fatalf("transition to In Progress failed: %v", err)
	}
	if err := repo.UpdateRequestStatus(id, ds.StatusCompleted, nil, nil); err != nil {
		t.Fatalf("transition to Completed failed: %v", err)
	}

	history, err := repo.GetRequestHistory(id)
	if err != nil {
		t.Fatalf("GetRequestHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if *history[0].OldStatus != ds.StatusNew || history[0].NewStatus != ds.StatusInProgress {
		t.Fatalf("unexpected first entry: %+v", history[0])
	}
	if *history[1].OldStatus != ds.StatusInProgress || history[1].NewStatus != ds.StatusCompleted {
		t.Fatalf("unexpected second entry: %+v", history[1])
	}
	if history[0].Executor == nil || *history[0].Executor != "carol" {
		t.Fatalf("executor not recorded in history: %+v", history[0])
	}
}

func TestUpdateStatusTimestampsSetOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, lots := newLotTransfer()
	id, err := repo.CreateRequest(req, lots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if err := repo.UpdateRequestStatus(id, ds.StatusInProgress, nil, nil); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	first, _ := repo.GetRequestByID(id)
	if first.StartedAt == nil {
		t.Fatal("started_at must be set on first entry into In Progress")
	}

	time.Sleep(20 * time.Millisecond)

	// Повторный вход в статус не меняет отметку времени
	if err := repo.UpdateRequestStatus(id, ds.StatusInProgress, nil, nil); err != nil {
		t.Fatalf("repeat transition failed: %v", err)
	}
	second, _ := repo.GetRequestByID(id)
	if !second.StartedAt.Equal(*first.StartedAt) {
		t.Fatalf("started_at changed on repeat transition: %v -> %v", first.StartedAt, second.StartedAt)
	}

	if err := repo.UpdateRequestStatus(id, ds.StatusCompleted, nil, nil); err != nil {
		t.Fatalf("transition to Completed failed: %v", err)
	}
	completedFirst, _ := repo.GetRequestByID(id)

	time.Sleep(20 * time.Millisecond)

	if err := repo.UpdateRequestStatus(id, ds.StatusCompleted, nil, nil); err != nil {
		t.Fatalf("repeat Completed transition failed: %v", err)
	}
	completedSecond, _ := repo.GetRequestByID(id)
	if !completedSecond.CompletedAt.Equal(*completedFirst.CompletedAt) {
		t.Fatal("completed_at changed on repeat transition")
	}
}

func TestUpdateStatusIssueNoteOverwrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, lots := newLotTransfer()
	id, err := repo.CreateRequest(req, lots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if err := repo.UpdateRequestStatus(id, ds.StatusIssue, nil, strPtr("damaged")); err != nil {
		t.Fatalf("transition to Issue failed: %v", err)
	}
	stored, _ := repo.GetRequestByID(id)
	if stored.IssueNote == nil || *stored.IssueNote != "damaged" {
		t.Fatalf("expected issue note damaged, got %v", stored.IssueNote)
	}

	// Повторный Issue без заметки обнуляет поле: оно всегда отражает
	// последний вход в статус
	if err := repo.UpdateRequestStatus(id, ds.StatusIssue, nil, nil); err != nil {
		t.Fatalf("repeat Issue transition failed: %v", err)
	}
	stored, _ = repo.GetRequestByID(id)
	if stored.IssueNote != nil {
		t.Fatalf("expected issue note cleared, got %q", *stored.IssueNote)
	}
}

func TestGetRequestsFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	first, firstLots := newLotTransfer()
	firstID, err := repo.CreateRequest(first, firstLots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	second := &ds.WorkRequest{
		Kind:        ds.KindScrap,
		Requester:   "dave",
		Priority:    ds.PriorityP3,
		RequestDate: time.Now(),
	}
	if _, err := repo.CreateRequest(second, []ds.RequestLot{{LotID: "S1"}}, nil); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if err := repo.UpdateRequestStatus(firstID, ds.StatusInProgress, nil, nil); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	inProgress, err := repo.GetRequests(ds.StatusInProgress, "")
	if err != nil {
		t.Fatalf("GetRequests failed: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].ID != firstID {
		t.Fatalf("expected only first request in progress, got %+v", inProgress)
	}

	scrap, err := repo.GetRequests("", ds.KindScrap)
	if err != nil {
		t.Fatalf("GetRequests failed: %v", err)
	}
	if len(scrap) != 1 || scrap[0].Requester != "dave" {
		t.Fatalf("expected only scrap request, got %+v", scrap)
	}
}

func TestHistoryRecordsSurviveParentUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	req, lots := newLotTransfer()
	id, err := repo.CreateRequest(req, lots, nil)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if err := repo.UpdateRequestStatus(id, ds.StatusIssue, strPtr("carol"), strPtr("damaged")); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := repo.UpdateRequestStatus(id, ds.StatusInProgress, nil, nil); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	history, err := repo.GetRequestHistory(id)
	if err != nil {
		t.Fatalf("GetRequestHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	// Первая запись не изменилась после последующих переходов
	if history[0].Note == nil || *history[0].Note != "damaged" {
		t.Fatalf("first history entry mutated: %+v", history[0])
	}
}

func TestAddAttachmentRequiresRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWithDB(db)

	err := repo.AddAttachment(&ds.RequestAttachment{
		RequestID:  4242,
		FileName:   "packing-list.pdf",
		ObjectName: "request_abc_1.pdf",
		Size:       128,
	})
	if !errors.Is(err, repository.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	var count int64
	db.Model(&ds.RequestAttachment{}).Count(&count)
	if count != 0 {
		t.Fatalf("attachment row must not be created, found %d", count)
	}
}
