package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	pingErr error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.pingErr }

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockPinger{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database check = %s, want %s", report.Checks["database"], CheckOK)
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{pingErr: errors.New("connection refused")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("database check = %s, want %s", report.Checks["database"], CheckError)
	}
}
