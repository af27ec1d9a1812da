package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gccp-api/internal/adapter/repository/mysql"
	domain "gccp-api/internal/domain/contract"
	"gccp-api/internal/infrastructure/db"
	uc "gccp-api/internal/usecase/contract"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	e   *echo.Echo
	gdb *gorm.DB
	ids int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb, err := db.OpenGormWithDialector(sqlite.Open("file::memory:?_foreign_keys=on"), db.SingleConnPool, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	ts := &testServer{gdb: gdb}
	log := zaptest.NewLogger(t)
	usecase := uc.NewUsecase(mysql.NewContractRepository(gdb), mysql.NewGormUoW(gdb), log,
		uc.WithClock(func() time.Time { return testNow }),
		uc.WithIDGenerator(func() string {
			ts.ids++
			return fmt.Sprintf("%020d", ts.ids)
		}),
	)

	ts.e = echo.New()
	RegisterRoutes(ts.e, NewHandler(sqlDB), NewContractHandler(usecase, log))
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = jsonRequest(method, target, body)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) create(t *testing.T, mutate func(b map[string]any)) uc.ContractDTO {
	t.Helper()
	body := validBody()
	if mutate != nil {
		mutate(body)
	}
	rec := ts.do(t, stdhttp.MethodPost, "/contracts", body)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create: status %d body=%s", rec.Code, rec.Body.String())
	}
	var dto uc.ContractDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("create: bad json %v", err)
	}
	return dto
}

func (ts *testServer) list(t *testing.T, target string) []uc.ContractDTO {
	t.Helper()
	rec := ts.do(t, stdhttp.MethodGet, target, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("GET %s: status %d body=%s", target, rec.Code, rec.Body.String())
	}
	var out []uc.ContractDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("GET %s: bad json %v", target, err)
	}
	return out
}

func (ts *testServer) installmentRows(t *testing.T, contractID string) int64 {
	t.Helper()
	var n int64
	if err := ts.gdb.Model(&domain.Installment{}).Where("contract_id = ?", contractID).Count(&n).Error; err != nil {
		t.Fatalf("count installments: %v", err)
	}
	return n
}

func TestRouter_EmptyStore(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, stdhttp.MethodGet, "/contracts", nil)
	if rec.Code != stdhttp.StatusNotFound || decodeError(t, rec).Error != "no contracts registered" {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, stdhttp.MethodGet, "/contracts_summary", nil)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("summary: %d %s", rec.Code, rec.Body.String())
	}
	if rec = ts.do(t, stdhttp.MethodGet, "/health", nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, target string }{
		{stdhttp.MethodPatch, "/contracts"},
		{stdhttp.MethodDelete, "/contracts"},
		{stdhttp.MethodPost, "/contracts_summary"},
		{stdhttp.MethodGet, "/contracts/abc"},
	} {
		if rec := ts.do(t, tc.method, tc.target, nil); rec.Code != stdhttp.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status %d, want 405", tc.method, tc.target, rec.Code)
		}
	}
}

func TestRouter_CreateAndFilter(t *testing.T) {
	ts := newTestServer(t)

	sp := ts.create(t, nil)
	rj := ts.create(t, func(b map[string]any) {
		b["state"] = "RJ"
		b["issue_date"] = "2024-12-31"
		b["document_number"] = "98765432100"
	})

	if got := ts.list(t, "/contracts"); len(got) != 2 {
		t.Fatalf("all: %d", len(got))
	}
	for _, tc := range []struct {
		query string
		want  string
	}{
		{"state=SP", sp.ID},
		{"state=RJ", rj.ID},
		{"id=" + rj.ID, rj.ID},
		{"document_number=98765432100", rj.ID},
		{"issue_date=2025", sp.ID},
		{"issue_date=12/2024", rj.ID},
		{"issue_date=2025-01-15", sp.ID},
		{"issue_date=2024&state=RJ", rj.ID},
	} {
		got := ts.list(t, "/contracts?"+tc.query)
		if len(got) != 1 || got[0].ID != tc.want {
			t.Fatalf("%s: got %+v, want only %s", tc.query, got, tc.want)
		}
	}

	for _, tc := range []struct {
		query string
		code  int
		msg   string
	}{
		{"state=MG", stdhttp.StatusNotFound, "no contracts match the given parameters"},
		{"issue_date=2024&state=SP", stdhttp.StatusNotFound, "no contracts match the given parameters"},
		{"issue_datX=2025", stdhttp.StatusBadRequest, "invalid parameter(s)"},
		{"issue_date=2025-13", stdhttp.StatusBadRequest, "invalid issue_date filter"},
	} {
		rec := ts.do(t, stdhttp.MethodGet, "/contracts?"+tc.query, nil)
		if rec.Code != tc.code || decodeError(t, rec).Error != tc.msg {
			t.Fatalf("%s: %d %s", tc.query, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_CreateValidation(t *testing.T) {
	ts := newTestServer(t)

	body := validBody()
	body["installments"] = []map[string]any{
		{"installment_number": 1, "amount": 1000, "due_date": "2025-07-01"},
		{"installment_number": 3, "amount": 1000, "due_date": "2025-08-01"},
	}
	rec := ts.do(t, stdhttp.MethodPost, "/contracts", body)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	er := decodeError(t, rec)
	if !containsFieldMsg(er.Details, "installments", "sequential") || !containsFieldMsg(er.Details, "installments", "sum of installments") {
		t.Fatalf("details: %+v", er.Details)
	}

	var n int64
	ts.gdb.Model(&domain.Contract{}).Count(&n)
	if n != 0 {
		t.Fatalf("invalid contract persisted")
	}
}

func TestRouter_UpdatePartialAndReplaceInstallments(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, nil)

	// scalar patch keeps installments
	rec := ts.do(t, stdhttp.MethodPut, "/contracts", map[string]any{"id": created.ID, "state": "MG"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("partial: %d %s", rec.Code, rec.Body.String())
	}
	if got := ts.list(t, "/contracts?state=MG"); len(got) != 1 || len(got[0].Installments) != 2 {
		t.Fatalf("after partial: %+v", got)
	}

	// scalar amount change keeps the stored installments as they are
	rec = ts.do(t, stdhttp.MethodPut, "/contracts", map[string]any{
		"id": created.ID, "disbursed_amount": 12000, "interest_rate": 1.8, "state": "MG",
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("scalar amount: %d %s", rec.Code, rec.Body.String())
	}
	if got := ts.list(t, "/contracts?id="+created.ID); got[0].DisbursedAmount != "12000.00" ||
		got[0].InterestRate != "1.80" || len(got[0].Installments) != 2 || got[0].Installments[0].Amount != "5000.00" {
		t.Fatalf("after scalar amount: %+v", got[0])
	}

	// replacing the set
	rec = ts.do(t, stdhttp.MethodPut, "/contracts", map[string]any{
		"id":               created.ID,
		"disbursed_amount": 12000,
		"installments": []map[string]any{
			{"installment_number": 1, "amount": 4000, "due_date": "2025-07-01"},
			{"installment_number": 2, "amount": 4000, "due_date": "2025-08-01"},
			{"installment_number": 3, "amount": 4000, "due_date": "2025-09-01"},
		},
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("replace: %d %s", rec.Code, rec.Body.String())
	}
	if n := ts.installmentRows(t, created.ID); n != 3 {
		t.Fatalf("installment rows = %d, want 3", n)
	}
	got := ts.list(t, "/contracts?id="+created.ID)
	if got[0].DisbursedAmount != "12000.00" || got[0].Installments[2].DueDate != "2025-09-01" || got[0].State != "MG" {
		t.Fatalf("after replace: %+v", got[0])
	}

	// unknown id and missing id
	rec = ts.do(t, stdhttp.MethodPut, "/contracts", map[string]any{"id": "nope", "state": "SP"})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown id: %d", rec.Code)
	}
	rec = ts.do(t, stdhttp.MethodPut, "/contracts", map[string]any{"state": "SP"})
	if rec.Code != stdhttp.StatusBadRequest || decodeError(t, rec).Error != domain.ErrMissingID.Error() {
		t.Fatalf("missing id: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Summary(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, nil) // SP 10000 @1.50, installments 2x5000
	ts.create(t, func(b map[string]any) {
		b["disbursed_amount"] = 5000
		b["interest_rate"] = 3.25
		b["installments"] = []map[string]any{
			{"installment_number": 1, "amount": 5500, "due_date": "2025-07-01"},
		}
	})
	ts.create(t, func(b map[string]any) { b["state"] = "RJ" })

	rec := ts.do(t, stdhttp.MethodGet, "/contracts_summary?state=SP", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("summary: %d %s", rec.Code, rec.Body.String())
	}
	var got uc.SummaryDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	want := uc.SummaryDTO{TotalReceivable: "15500.00", TotalDisbursed: "15000.00", TotalContracts: 2, AverageRate: "2.38"}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}

	rec = ts.do(t, stdhttp.MethodGet, "/contracts_summary?state=AM", nil)
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("empty filter: %d", rec.Code)
	}
}

func TestRouter_Pagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 5; i++ {
		ts.create(t, nil)
	}

	rec := ts.do(t, stdhttp.MethodGet, "/contracts?state=SP&page=3&page_size=2", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("page: %d %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Data        []uc.ContractDTO `json:"data"`
		TotalRows   int64            `json:"total_rows"`
		TotalPages  int              `json:"total_pages"`
		CurrentPage int              `json:"current_page"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if page.TotalRows != 5 || page.TotalPages != 3 || page.CurrentPage != 3 || len(page.Data) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestRouter_Delete(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, nil)
	keep := ts.create(t, nil)

	if rec := ts.do(t, stdhttp.MethodDelete, "/contracts/"+created.ID, nil); rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if n := ts.installmentRows(t, created.ID); n != 0 {
		t.Fatalf("orphan installments: %d", n)
	}
	if n := ts.installmentRows(t, keep.ID); n != 2 {
		t.Fatalf("other contract lost installments: %d", n)
	}
	if rec := ts.do(t, stdhttp.MethodDelete, "/contracts/"+created.ID, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
}
