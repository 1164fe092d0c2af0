package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

var (
	schoolRepo school.Repository
	usrRepo    user.Repository
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db := inmemdb.NewDB()
	schoolRepo = inmemdb.NewSchoolRepository(db)
	usrRepo = inmemdb.NewUserRepository(db)

	// set up services
	schoolSvc := school.NewService(schoolRepo)
	usrSvc := user.NewService(usrRepo)

	// set up validation
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	conf := &core.Config{
		Env:            "TEST",
		TestMode:       true,
		FrontendOrigin: "http://localhost:3000",
	}

	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     nopLogger{},
			SchoolSvc:  schoolSvc,
			UserSvc:    usrSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

// successData wraps data (and an optional message) in the success envelope.
func successData(t *testing.T, data interface{}, msg ...string) []byte {
	t.Helper()

	res := Response{Success: true, Data: data}
	if len(msg) > 0 {
		res.Message = msg[0]
	}
	return marshalObj(t, res)
}

// failedMsg wraps msg in the failure envelope.
func failedMsg(t *testing.T, msg interface{}) []byte {
	t.Helper()

	return marshalObj(t, Response{Success: false, Message: msg})
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
