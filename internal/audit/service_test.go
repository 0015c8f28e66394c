package audit

import (
	"context"
	"testing"
	"time"
)

type stubTimelineRepo struct {
	windowRows     []TimelineRow
	allRows        []TimelineRow
	lastWindowCall WindowParams
	lastAllCall    WindowParams
}

func (s *stubTimelineRepo) Window(ctx context.Context, params WindowParams) ([]TimelineRow, error) {
	s.lastWindowCall = params
	return s.windowRows, nil
}

func (s *stubTimelineRepo) All(ctx context.Context, params WindowParams) ([]TimelineRow, error) {
	s.lastAllCall = params
	return s.allRows, nil
}

func mockRow(ts, actor, action, entity, entityID string) TimelineRow {
	tval, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{At: tval, Actor: actor, Action: action, Entity: entity, EntityID: entityID}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{
		windowRows: []TimelineRow{
			mockRow("2026-03-10T10:00:00Z", "root@example.com", "permission.grant", "user_permissions", "1"),
			mockRow("2026-03-09T09:00:00Z", "root@example.com", "permission.revoke", "user_permissions", "2"),
			mockRow("2026-03-08T08:00:00Z", "root@example.com", "user.role_change", "users", "3"),
		},
	}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), TimelineFilters{
		From:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Page:     1,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext {
		t.Fatalf("expected hasNext true")
	}
	if result.Paging.NextPage != 2 {
		t.Fatalf("expected nextPage 2, got %d", result.Paging.NextPage)
	}
	if repo.lastWindowCall.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", repo.lastWindowCall.Limit)
	}
	if repo.lastWindowCall.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastWindowCall.Offset)
	}
}

func TestServiceTimelineSecondPageOffset(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastWindowCall.Offset != 20 {
		t.Fatalf("expected offset 20, got %d", repo.lastWindowCall.Offset)
	}
	if result.Paging.PrevPage != 2 {
		t.Fatalf("expected prevPage 2, got %d", result.Paging.PrevPage)
	}
	if result.Paging.HasNext {
		t.Fatalf("expected hasNext false")
	}
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)
	if _, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastWindowCall.Limit != 51 {
		t.Fatalf("expected clamped limit 51, got %d", repo.lastWindowCall.Limit)
	}
}

func TestServiceExportReturnsAllRows(t *testing.T) {
	repo := &stubTimelineRepo{
		allRows: []TimelineRow{
			mockRow("2026-03-10T10:00:00Z", "root@example.com", "permission.grant", "user_permissions", "1"),
			mockRow("2026-03-09T09:00:00Z", "root@example.com", "permission.reset", "user_permissions", "2"),
		},
	}
	svc := NewService(repo)
	rows, err := svc.Export(context.Background(), TimelineFilters{Actor: "root@example.com"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if repo.lastAllCall.Actor != "root@example.com" {
		t.Fatalf("expected actor filter to pass through, got %q", repo.lastAllCall.Actor)
	}
}

func TestCSVExporterHeaderAndRows(t *testing.T) {
	rows := []TimelineRow{
		{
			At:       time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			ActorID:  1,
			Actor:    "root@example.com",
			Action:   "permission.grant",
			Entity:   "user_permissions",
			EntityID: "42",
			Meta:     map[string]any{"permission": "view_analytics"},
		},
	}
	out, err := CSVExporter{}.WriteCSV(rows)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	got := string(out)
	want := "at,actor_id,actor,action,entity,entity_id,meta\n"
	if len(got) <= len(want) || got[:len(want)] != want {
		t.Fatalf("unexpected csv header: %q", got)
	}
}
