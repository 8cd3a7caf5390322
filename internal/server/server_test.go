package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"contestatii/internal/auth"
	"contestatii/internal/report"
	"contestatii/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockComplaints struct{ mock.Mock }

func (m *mockComplaints) CreateComplaint(ctx context.Context, in *types.NewComplaint) (*types.Created, error) {
	args := m.Called(ctx, in)
	created, _ := args.Get(0).(*types.Created)
	return created, args.Error(1)
}

func (m *mockComplaints) CreateComplaintShell(ctx context.Context, in *types.NewComplaint) (*types.Created, error) {
	args := m.Called(ctx, in)
	created, _ := args.Get(0).(*types.Created)
	return created, args.Error(1)
}

func (m *mockComplaints) ComplaintView(ctx context.Context, complaintID string) (*types.ComplaintRow, error) {
	args := m.Called(ctx, complaintID)
	row, _ := args.Get(0).(*types.ComplaintRow)
	return row, args.Error(1)
}

func (m *mockComplaints) UpdateComplaint(ctx context.Context, complaintID string, complaint *types.Complaint, address *types.Address, claimant *types.Claimant) error {
	return m.Called(ctx, complaintID, complaint, address, claimant).Error(0)
}

func (m *mockComplaints) DeleteComplaint(ctx context.Context, complaintID string) error {
	return m.Called(ctx, complaintID).Error(0)
}

func (m *mockComplaints) FilterComplaints(ctx context.Context, f *types.ComplaintFilter) ([]*types.ComplaintRow, error) {
	args := m.Called(ctx, f)
	rows, _ := args.Get(0).([]*types.ComplaintRow)
	return rows, args.Error(1)
}

func (m *mockComplaints) Stats(ctx context.Context) (*types.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*types.Stats)
	return stats, args.Error(1)
}

func (m *mockComplaints) NextSequenceNumber(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockClaimants struct{ mock.Mock }

func (m *mockClaimants) Create(ctx context.Context, claimant *types.Claimant) error {
	err := m.Called(ctx, claimant).Error(0)
	if err == nil {
		claimant.ID = "claimant-1"
	}
	return err
}

func (m *mockClaimants) ByComplaintID(ctx context.Context, complaintID string) ([]*types.Claimant, error) {
	args := m.Called(ctx, complaintID)
	claimants, _ := args.Get(0).([]*types.Claimant)
	return claimants, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, user *types.User) error {
	return m.Called(ctx, user).Error(0)
}

type stubRenderer struct{ err error }

func (r *stubRenderer) Render(w io.Writer, rows []*types.ComplaintRow) error {
	if r.err != nil {
		return r.err
	}
	_, err := w.Write([]byte("%PDF-1.3 stub"))
	return err
}

type stubArchive struct {
	key  string
	err  error
	body []byte
}

func (a *stubArchive) Store(ctx context.Context, pdf []byte) (string, error) {
	a.body = pdf
	return a.key, a.err
}

type stubPinger struct{ err error }

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

type testEnv struct {
	svc        *Service
	complaints *mockComplaints
	claimants  *mockClaimants
	users      *mockUsers
	tokens     *auth.Tokens
	archive    *stubArchive
	pinger     *stubPinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRenderer(t, &stubRenderer{})
}

func newTestEnvWithRenderer(t *testing.T, renderer ReportRenderer) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		Environment:    "test",
		ServerPort:     0,
		CookieHashKey:  base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey: base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	tokens, err := auth.NewTokens("test-secret-test-secret-test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		complaints: new(mockComplaints),
		claimants:  new(mockClaimants),
		users:      new(mockUsers),
		tokens:     tokens,
		archive:    &stubArchive{key: "rapoarte/2024-04-26/abc.pdf"},
		pinger:     &stubPinger{},
	}

	env.svc, err = New(config, logger, env.pinger, env.complaints, env.claimants, env.users, tokens, renderer, env.archive, prometheus.NewRegistry())
	require.NoError(t, err)

	return env
}

func (e *testEnv) bearer(t *testing.T) string {
	t.Helper()

	token, err := e.tokens.Issue(&types.User{ID: "user-1", Name: "Ana Pop", Email: "ana@example.ro"})
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.svc.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) authed(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", e.bearer(t))
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/contestatii-stats", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["status"])
}

func TestRequireAuth_BadToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/contestatii-stats", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not okay", decodeBody(t, rec)["message"])
}

func TestVerify_UnauthenticatedAnswers200(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/verify", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"Status": "Error", "Error": "You are not authenticated"}, decodeBody(t, rec))
}

func TestLogin_SetsCookieThatVerifies(t *testing.T) {
	env := newTestEnv(t)

	hash, err := auth.HashPassword("parola-lunga")
	require.NoError(t, err)
	env.users.On("UserByEmail", mock.Anything, "ana@example.ro").
		Return(&types.User{ID: "user-1", Name: "Ana Pop", Email: "ana@example.ro", PasswordHash: hash}, nil)

	form := url.Values{"email": {"ana@example.ro"}, "password": {"parola-lunga"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"Status": "Success"}, decodeBody(t, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	verify := httptest.NewRequest(http.MethodGet, "/verify", nil)
	verify.AddCookie(cookies[0])
	rec = env.do(verify)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"Status": "Success", "name": "Ana Pop"}, decodeBody(t, rec))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	hash, err := auth.HashPassword("parola-lunga")
	require.NoError(t, err)
	env.users.On("UserByEmail", mock.Anything, "ana@example.ro").
		Return(&types.User{ID: "user-1", PasswordHash: hash}, nil)
	env.users.On("UserByEmail", mock.Anything, "nobody@example.ro").
		Return(nil, types.ErrUserNotFound)

	for _, body := range []string{
		`{"email":"ana@example.ro","password":"gresita"}`,
		`{"email":"nobody@example.ro","password":"parola-lunga"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := env.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, map[string]any{"Error": "Invalid email or password"}, decodeBody(t, rec))
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("Create", mock.Anything, mock.MatchedBy(func(u *types.User) bool {
		return u.Email == "ana@example.ro" && u.PasswordHash != "" && u.PasswordHash != "parola-lunga"
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"name":"Ana","email":"ana@example.ro","password":"parola-lunga"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env.users.AssertExpectations(t)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("Create", mock.Anything, mock.Anything).Return(types.ErrEmailTaken)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"short password", `{"name":"Ana","email":"ana@example.ro","password":"scurt"}`, http.StatusBadRequest},
		{"bad email", `{"name":"Ana","email":"ana","password":"parola-lunga"}`, http.StatusBadRequest},
		{"duplicate", `{"name":"Ana","email":"ana@example.ro","password":"parola-lunga"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := env.do(req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestCreateComplaint(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("CreateComplaint", mock.Anything, mock.MatchedBy(func(in *types.NewComplaint) bool {
		return len(in.Claimants) == 2 &&
			in.Claimants[0].LastName == "Popescu" &&
			in.Claimants[1].FirstName == "Elena" &&
			*in.Address.County == "CT" &&
			in.Complaint.ChosenDate == types.NewDate(2024, time.March, 15) &&
			*in.Complaint.UserID == "user-1"
	})).Return(&types.Created{ID: "c1", SequenceNumber: 7}, nil)

	body := `{
		"nume": "Popescu", "prenume": "Ion", "cnp": "1234567890123",
		"regiune": "CT", "dataAleasa": "2024-03-15",
		"membri": [{"nume": "Popescu", "prenume": "Elena", "cnp": "2234567890123"}]
	}`
	rec := env.do(env.authed(t, http.MethodPost, "/contestatii", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{
		"status":           "success",
		"id":               "c1",
		"numarContestatie": float64(7),
		"message":          "Contestația a fost salvată cu succes",
	}, decodeBody(t, rec))
	env.complaints.AssertExpectations(t)
}

func TestCreateComplaint_MissingClaimantFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(env.authed(t, http.MethodPost, "/contestatii", `{"nume":"Popescu","regiune":"CT"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Câmpurile nume, prenume și cnp sunt obligatorii", decodeBody(t, rec)["message"])
	env.complaints.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
}

func TestCreateComplaint_InvalidMember(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"nume": "Popescu", "prenume": "Ion", "cnp": "1234567890123",
		"membri": [{"nume": "Popescu", "prenume": "Elena", "cnp": "2"}, {"prenume": "Dan", "cnp": "3"}]
	}`
	rec := env.do(env.authed(t, http.MethodPost, "/contestatii", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Câmpuri lipsă sau invalide: membri[1].nume", decodeBody(t, rec)["message"])
	env.complaints.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
}

func TestCreateComplaint_StepFailure(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("CreateComplaint", mock.Anything, mock.Anything).
		Return(nil, errors.Join(types.ErrClaimantInsert, errors.New("value too long")))

	rec := env.do(env.authed(t, http.MethodPost, "/contestatii", `{"nume":"Popescu","prenume":"Ion","cnp":"1"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Nu s-a putut salva persoana", decodeBody(t, rec)["message"])
}

func TestCreateComplaintShell_Form(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("CreateComplaintShell", mock.Anything, mock.MatchedBy(func(in *types.NewComplaint) bool {
		return len(in.Claimants) == 0 && *in.Address.UAT == "Medgidia" && in.Complaint.RequestDate == types.NewDate(2023, time.October, 2)
	})).Return(&types.Created{ID: "c2", SequenceNumber: 8}, nil)

	form := url.Values{"uat": {"Medgidia"}, "dataCerere": {"2023-10-02"}}
	req := httptest.NewRequest(http.MethodPost, "/contestatii-only", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", env.bearer(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "c2", decodeBody(t, rec)["id"])
}

func TestAddClaimant(t *testing.T) {
	env := newTestEnv(t)

	env.claimants.On("Create", mock.Anything, mock.MatchedBy(func(c *types.Claimant) bool {
		return c.ComplaintID == "c1"
	})).Return(nil)
	env.claimants.On("Create", mock.Anything, mock.MatchedBy(func(c *types.Claimant) bool {
		return c.ComplaintID == "missing"
	})).Return(types.ErrComplaintNotFound)

	rec := env.do(env.authed(t, http.MethodPost, "/membri-contestatie", `{"contestatie_id":"c1","nume":"Pop","prenume":"Dan","cnp":"1"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "claimant-1", decodeBody(t, rec)["id"])

	rec = env.do(env.authed(t, http.MethodPost, "/membri-contestatie", `{"contestatie_id":"missing","nume":"Pop","prenume":"Dan","cnp":"1"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(env.authed(t, http.MethodPost, "/membri-contestatie", `{"nume":"Pop"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Câmpurile contestatie_id, nume, prenume și cnp sunt obligatorii", decodeBody(t, rec)["message"])
}

func TestListClaimants(t *testing.T) {
	env := newTestEnv(t)

	env.claimants.On("ByComplaintID", mock.Anything, "c1").
		Return([]*types.Claimant{{ID: "p1", LastName: "Pop"}}, nil)

	rec := env.do(env.authed(t, http.MethodGet, "/membri-contestatie/c1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var claimants []*types.Claimant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claimants))
	require.Len(t, claimants, 1)
	assert.Equal(t, "p1", claimants[0].ID)
}

func TestGetComplaint(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("ComplaintView", mock.Anything, "c1").
		Return(&types.ComplaintRow{Complaint: types.Complaint{ID: "c1", SequenceNumber: 3}, County: types.Nullable("CT")}, nil)
	env.complaints.On("ComplaintView", mock.Anything, "missing").
		Return(nil, types.ErrComplaintNotFound)

	rec := env.do(env.authed(t, http.MethodGet, "/contestatii/c1", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["numar_contestatie"])
	assert.Equal(t, "CT", body["regiune"])

	rec = env.do(env.authed(t, http.MethodGet, "/contestatii/missing", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateComplaint_ClaimantAddressedByID(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("UpdateComplaint", mock.Anything, "c1",
		mock.MatchedBy(func(c *types.Complaint) bool { return c.Approved && !c.Rejected }),
		mock.MatchedBy(func(a *types.Address) bool { return *a.County == "TL" }),
		mock.MatchedBy(func(c *types.Claimant) bool { return c != nil && c.ID == "p2" && c.ComplaintID == "c1" }),
	).Return(nil).Once()

	body := `{"admis":true,"regiune":"TL","person_id":"p2","nume":"Pop","prenume":"Ana","cnp":"2"}`
	rec := env.do(env.authed(t, http.MethodPut, "/contestatii/c1", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	env.complaints.AssertExpectations(t)
}

func TestUpdateComplaint_WithoutClaimant(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("UpdateComplaint", mock.Anything, "c1", mock.Anything, mock.Anything, (*types.Claimant)(nil)).
		Return(nil).Once()
	env.complaints.On("UpdateComplaint", mock.Anything, "missing", mock.Anything, mock.Anything, (*types.Claimant)(nil)).
		Return(types.ErrComplaintNotFound).Once()

	rec := env.do(env.authed(t, http.MethodPut, "/contestatii/c1", `{"respins":true}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(env.authed(t, http.MethodPut, "/contestatii/missing", `{"respins":true}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a claimant id without the claimant's fields is rejected
	rec = env.do(env.authed(t, http.MethodPut, "/contestatii/c1", `{"person_id":"p1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.complaints.AssertExpectations(t)
}

func TestUpdateComplaint_ForeignClaimant(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("UpdateComplaint", mock.Anything, "c1", mock.Anything, mock.Anything, mock.Anything).
		Return(types.ErrClaimantNotFound)

	rec := env.do(env.authed(t, http.MethodPut, "/contestatii/c1", `{"person_id":"px","nume":"A","prenume":"B","cnp":"1"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteComplaint(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("DeleteComplaint", mock.Anything, "c1").Return(nil)
	env.complaints.On("DeleteComplaint", mock.Anything, "missing").Return(types.ErrComplaintNotFound)
	env.complaints.On("DeleteComplaint", mock.Anything, "broken").Return(errors.New("connection reset"))

	assert.Equal(t, http.StatusOK, env.do(env.authed(t, http.MethodDelete, "/contestatii/c1", "")).Code)
	assert.Equal(t, http.StatusNotFound, env.do(env.authed(t, http.MethodDelete, "/contestatii/missing", "")).Code)

	rec := env.do(env.authed(t, http.MethodDelete, "/contestatii/broken", ""))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestFilterComplaints(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return f.CNP == "1234567890123" && f.DateStart == types.NewDate(2024, time.January, 1) && !f.DateEnd.Valid
	})).Return([]*types.ComplaintRow{}, nil)

	rec := env.do(env.authed(t, http.MethodPost, "/filter-contestatii", `{"cnp":"1234567890123","dataStart":"2024-01-01","dataEnd":""}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFilterComplaints_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(env.authed(t, http.MethodPost, "/filter-contestatii", `{"dataStart":"15.03.2024"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Date invalide", decodeBody(t, rec)["message"])
}

func TestFilterComplaints_FormPayload(t *testing.T) {
	env := newTestEnv(t)

	// the search form posts every field as a string, blank when untouched
	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return !f.SequenceNumber.Valid && f.LastName == "Pop" && !f.Approved.Valid && !f.DateStart.Valid
	})).Return([]*types.ComplaintRow{}, nil).Once()
	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return f.SequenceNumber == types.SomeInt(5) && f.Approved == types.SomeBool(true) && f.Rejected == types.SomeBool(false)
	})).Return([]*types.ComplaintRow{}, nil).Once()

	body := `{"nume":"Pop","prenume":"","cnp":"","regiune":"","dataStart":"","dataEnd":"","numarContestatie":""}`
	rec := env.do(env.authed(t, http.MethodPost, "/filter-contestatii", body))
	require.Equal(t, http.StatusOK, rec.Code)

	body = `{"nume":"","numarContestatie":"5","admis":1,"respins":"0"}`
	rec = env.do(env.authed(t, http.MethodPost, "/filter-contestatii", body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(env.authed(t, http.MethodPost, "/filter-contestatii", `{"numarContestatie":"cinci"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.complaints.AssertExpectations(t)
}

func TestFilterComplaints_FormEncoded(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return f.SequenceNumber == types.SomeInt(3) && f.FieldVerified == types.SomeBool(true) && !f.Approved.Valid
	})).Return([]*types.ComplaintRow{}, nil).Once()

	form := url.Values{"numarContestatie": {"3"}, "verificatTeren": {"1"}, "admis": {""}}
	req := env.authed(t, http.MethodPost, "/filter-contestatii", form.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	env.complaints.AssertExpectations(t)
}

func TestUpdateComplaint_NumericFlags(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("UpdateComplaint", mock.Anything, "c1",
		mock.MatchedBy(func(c *types.Complaint) bool { return c.FieldVerified && !c.Approved && c.Rejected }),
		mock.Anything,
		(*types.Claimant)(nil),
	).Return(nil).Once()

	// the edit form echoes the flags back the way the row stored them
	rec := env.do(env.authed(t, http.MethodPut, "/contestatii/c1", `{"verificat_teren":1,"admis":0,"respins":"1"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(env.authed(t, http.MethodPut, "/contestatii/c1", `{"respins":"poate"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.complaints.AssertExpectations(t)
}

func TestStatsAndNextNumber(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("Stats", mock.Anything).Return(&types.Stats{Total: 4, Approved: 2, Rejected: 2, Pending: 1, Conflicting: 1}, nil)
	env.complaints.On("NextSequenceNumber", mock.Anything).Return(5, nil)

	rec := env.do(env.authed(t, http.MethodGet, "/contestatii-stats", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":4,"approved":2,"rejected":2,"pending":1,"conflicting":1}`, rec.Body.String())

	rec = env.do(env.authed(t, http.MethodGet, "/contestatii-next-number", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"numarContestatie":5}`, rec.Body.String())
}

func TestLocationPreselection(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(env.authed(t, http.MethodPost, "/location-preselection", `{"regiune":"CT","uat":"Medgidia"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Constanța", data["regiuneNume"])
	assert.Equal(t, "", data["adresaPrimarie"])

	rec = env.do(env.authed(t, http.MethodPost, "/location-preselection", `{"uat":"Medgidia"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Județul este obligatoriu", decodeBody(t, rec)["message"])

	req := httptest.NewRequest(http.MethodPost, "/location-preselection", strings.NewReader(`{"regiune":"CT"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Error", decodeBody(t, rec)["Status"])
}

func TestCounties(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/judete", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var counties []types.County
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counties))
	assert.Len(t, counties, len(types.Counties))
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)

	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return f.County == "CT"
	})).Return([]*types.ComplaintRow{{Complaint: types.Complaint{ID: "c1"}}}, nil)
	env.complaints.On("FilterComplaints", mock.Anything, mock.MatchedBy(func(f *types.ComplaintFilter) bool {
		return f.County == "TL"
	})).Return([]*types.ComplaintRow{}, nil)

	rec := env.do(env.authed(t, http.MethodPost, "/rapoarte", `{"regiune":"CT"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "proces-verbal-")
	assert.Equal(t, "rapoarte/2024-04-26/abc.pdf", rec.Header().Get("X-Report-Key"))
	assert.Equal(t, "%PDF-1.3 stub", rec.Body.String())
	assert.Equal(t, []byte("%PDF-1.3 stub"), env.archive.body)

	rec = env.do(env.authed(t, http.MethodPost, "/rapoarte", `{"regiune":"TL"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReport_RealRenderer(t *testing.T) {
	cfg, err := report.LoadConfig("")
	require.NoError(t, err)
	env := newTestEnvWithRenderer(t, report.NewRenderer(cfg))

	personID, last, first := "p1", "Țîrlea", "Ștefan"
	env.complaints.On("FilterComplaints", mock.Anything, mock.Anything).Return([]*types.ComplaintRow{{
		Complaint: types.Complaint{
			ID:                "c1",
			SequenceNumber:    12,
			RequestDate:       types.NewDate(2024, time.March, 4),
			PropertyID:        types.Nullable("101234"),
			AttachedDocuments: types.Nullable("extras de carte funciară și schiță întocmită de împuternicit"),
			Rejected:          true,
		},
		PersonID:  &personID,
		LastName:  &last,
		FirstName: &first,
		County:    types.Nullable("CT"),
		UAT:       types.Nullable("Medgidia"),
	}}, nil)

	rec := env.do(env.authed(t, http.MethodPost, "/rapoarte", `{"regiune":"CT"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Equal(t, rec.Header().Get("Content-Length"), strconv.Itoa(rec.Body.Len()))
	assert.Equal(t, env.archive.body, rec.Body.Bytes())
}

func TestReport_ArchiveFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.archive.err = errors.New("bucket missing")

	env.complaints.On("FilterComplaints", mock.Anything, mock.Anything).
		Return([]*types.ComplaintRow{{Complaint: types.Complaint{ID: "c1"}}}, nil)

	rec := env.do(env.authed(t, http.MethodPost, "/rapoarte", `{}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Report-Key"))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	env.pinger.err = errors.New("down")
	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(httptest.NewRequest(http.MethodGet, "/judete", nil))
	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `contestatii_http_requests_total{method="GET",route="/judete",status="200"} 1`)
}

func TestStripTrailingSlash(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/filter-contestatii/?x=1", nil))

	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/filter-contestatii?x=1", rec.Header().Get("Location"))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/contestatii/:id", routeLabel("/contestatii/abc"))
	assert.Equal(t, "/membri-contestatie/:id", routeLabel("/membri-contestatie/abc"))
	assert.Equal(t, "/contestatii", routeLabel("/contestatii"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
