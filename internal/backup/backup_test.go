package backup

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ecodispensa/dispensa/internal/database"
	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

type fixedSource struct {
	pantry   []model.PantryItem
	shopping []model.ShoppingItem
}

func (f *fixedSource) PantryItems() []model.PantryItem     { return f.pantry }
func (f *fixedSource) ShoppingItems() []model.ShoppingItem { return f.shopping }

func setupManager(t *testing.T, cb StatusCallback) (*Manager, *mockS3Client, *store.SettingsStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	settings := store.NewSettingsStore(db)
	source := &fixedSource{
		pantry:   []model.PantryItem{{ID: "1", Name: "Latte", Quantity: 1, Unit: model.UnitLiter}},
		shopping: []model.ShoppingItem{{ID: "2", Name: "Pane", Category: model.CategoryPantry}},
	}

	cfg := Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "household-secret",
	}
	m := NewManager(cfg, source, settings, cb)
	mock := newMockS3()
	m.client = mock
	return m, mock, settings
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// Credentials but no passphrase -> still disabled
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil)
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "secret",
	}, nil, nil, nil)
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m, mock, _ := setupManager(t, cb)

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	mock.mu.Lock()
	sealed, ok := mock.objects[key]
	mock.mu.Unlock()
	if !ok {
		t.Fatalf("no object uploaded under %q", key)
	}
	if bytes.Contains(sealed, []byte("Latte")) {
		t.Error("uploaded snapshot is not encrypted")
	}

	status := m.Status()
	if status.State != StateIdle || status.LastBackup == nil || status.LastKey != key {
		t.Errorf("status after backup = %+v", status)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning || !received[0].InProgress {
		t.Errorf("first callback = %+v, want running", received[0])
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback = %+v, want idle", received[1])
	}
}

func TestFetchRoundTrip(t *testing.T) {
	m, _, _ := setupManager(t, nil)

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	snapshot, err := m.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snapshot.Pantry) != 1 || snapshot.Pantry[0].Name != "Latte" {
		t.Errorf("pantry = %+v", snapshot.Pantry)
	}
	if len(snapshot.Shopping) != 1 || snapshot.Shopping[0].Name != "Pane" {
		t.Errorf("shopping = %+v", snapshot.Shopping)
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, mock, _ := setupManager(t, nil)
	mock.putErr = &s3NotFound{}

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}
}

func TestScheduleRunsAtConfiguredHour(t *testing.T) {
	m, mock, settings := setupManager(t, nil)
	if err := settings.Set("backup_enabled", "true"); err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	if err := settings.Set("backup_schedule_hour", "3"); err != nil {
		t.Fatalf("set hour: %v", err)
	}

	m.now = func() time.Time { return time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC) }
	m.checkSchedule(context.Background())
	mock.mu.Lock()
	count := len(mock.objects)
	mock.mu.Unlock()
	if count != 0 {
		t.Fatalf("backup ran outside scheduled hour, %d objects", count)
	}

	m.now = func() time.Time { return time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC) }
	m.checkSchedule(context.Background())
	mock.mu.Lock()
	count = len(mock.objects)
	mock.mu.Unlock()
	if count != 1 {
		t.Fatalf("scheduled backup did not run, %d objects", count)
	}
}

func TestScheduleDisabledSetting(t *testing.T) {
	m, mock, settings := setupManager(t, nil)
	if err := settings.Set("backup_schedule_hour", "3"); err != nil {
		t.Fatalf("set hour: %v", err)
	}

	m.now = func() time.Time { return time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC) }
	m.checkSchedule(context.Background())

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if len(mock.objects) != 0 {
		t.Errorf("backup ran while disabled, %d objects", len(mock.objects))
	}
}

func TestManagerStopSafety(t *testing.T) {
	m, _, _ := setupManager(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil)

	m.Start(context.Background()) // no-op for disabled state

	// Stop should not block
	m.Stop()
}
