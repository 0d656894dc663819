package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type pageRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c, _ := newContext("/?symbol=AAPL")
	var req pageRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
	if req.Symbol != "AAPL" || req.Limit != 10 {
		t.Fatalf("got %+v", req)
	}
}

func TestReadAndValidateRequestReportsJSONFieldNames(t *testing.T) {
	c, _ := newContext("/?limit=99")
	var req pageRequest
	errs, ok := ReadAndValidateRequest(c, &req).([]ValidationError)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected two validation errors, got %v", errs)
	}
	if errs[0].Field != "symbol" || errs[0].Code != "ERR_REQUIRED" {
		t.Fatalf("first error %+v", errs[0])
	}
	if errs[1].Field != "limit" || errs[1].Params["max"] != "50" {
		t.Fatalf("second error %+v", errs[1])
	}
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext("/")
	cause := errors.New("only 3 closes")
	if err := AppErrorResponse(c, UnprocessableError("not enough history").WithCode("insufficient_history").WithError(cause)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].Code != "ERR_INSUFFICIENT_HISTORY" || body.Data[0].Message != "not enough history" {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestAppErrorResponseHidesUnknownErrors(t *testing.T) {
	c, rec := newContext("/")
	if err := AppErrorResponse(c, errors.New("db password leaked")); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || rec.Body.String() == "" {
		t.Fatalf("status %d", rec.Code)
	}
	var body APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Data != "Something went wrong" {
		t.Fatalf("data %v", body.Data)
	}
}
