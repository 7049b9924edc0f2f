package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/storefront/internal/handler"
	"github.com/msomdec/storefront/internal/repository/sqlite"
)

type testServer struct {
	*httptest.Server
	db *sqlite.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := newTestDB(t)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, newTestServices(t, db))
	srv := httptest.NewServer(handler.Wrap(mux, []string{"*"}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, db: db}
}

func (s *testServer) postJSON(t *testing.T, path string, body any, header http.Header) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, s.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

type productBody struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	NewPrice  float64 `json:"new_price"`
	OldPrice  float64 `json:"old_price"`
	Date      string  `json:"date"`
	Available bool    `json:"available"`
}

func (s *testServer) getProducts(t *testing.T, path string) []productBody {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", path, resp.StatusCode)
	}
	return decode[[]productBody](t, resp)
}

func productIDs(products []productBody) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestIntegration_SignupLoginAddToCart(t *testing.T) {
	srv := newTestServer(t)

	// 1. Signup.
	resp := srv.postJSON(t, "/signup", map[string]string{
		"username": "Integration User", "email": "integ@example.com", "password": "password123",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d", resp.StatusCode)
	}
	signup := decode[map[string]any](t, resp)
	if signup["success"] != true || signup["token"] == "" {
		t.Fatalf("signup: unexpected body %v", signup)
	}

	// 2. Duplicate signup.
	resp = srv.postJSON(t, "/signup", map[string]string{
		"username": "Other", "email": "integ@example.com", "password": "different",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", resp.StatusCode)
	}
	dup := decode[map[string]any](t, resp)
	if dup["success"] != false || dup["errors"] != "existing user found with same email address" {
		t.Fatalf("duplicate signup: unexpected body %v", dup)
	}

	// 3. Login failures carry the exact messages.
	resp = srv.postJSON(t, "/login", map[string]string{"email": "integ@example.com", "password": "nope"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["errors"] != "Wrong Password" {
		t.Fatalf("wrong password: unexpected body %v", body)
	}

	resp = srv.postJSON(t, "/login", map[string]string{"email": "ghost@example.com", "password": "x"}, nil)
	if body := decode[map[string]any](t, resp); body["errors"] != "Wrong Email ID" {
		t.Fatalf("unknown email: unexpected body %v", body)
	}

	// 4. Login.
	resp = srv.postJSON(t, "/login", map[string]string{"email": "integ@example.com", "password": "password123"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	token, _ := decode[map[string]any](t, resp)["token"].(string)
	if token == "" {
		t.Fatal("login: expected token")
	}
	auth := http.Header{"Auth-Token": {token}}

	// 5. Add to cart twice, once as a number and once as a string.
	for _, item := range []any{5, "5"} {
		resp = srv.postJSON(t, "/addtocart", map[string]any{"itemId": item}, auth)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(body) != "Added" {
			t.Fatalf("addtocart: expected 200 Added, got %d %q", resp.StatusCode, body)
		}
	}
	resp = srv.postJSON(t, "/addtocart", map[string]any{"itemId": 9}, auth)
	resp.Body.Close()

	// 6. Cart reflects both entries.
	resp = srv.postJSON(t, "/getcart", map[string]any{}, auth)
	cart := decode[map[string]int](t, resp)
	if cart["5"] != 2 || cart["9"] != 1 || len(cart) != 2 {
		t.Fatalf("getcart: unexpected cart %v", cart)
	}

	// 7. Cart routes require a token.
	resp = srv.postJSON(t, "/addtocart", map[string]any{"itemId": 5}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("addtocart without token: expected 401, got %d", resp.StatusCode)
	}
}

func TestIntegration_AddToCart_DeletedUserAndBadItem(t *testing.T) {
	srv := newTestServer(t)
	svc := newTestServices(t, srv.db)
	token := signupToken(t, svc.Auth, "gone@example.com")
	auth := http.Header{"Auth-Token": {token}}

	resp := srv.postJSON(t, "/addtocart", map[string]any{}, auth)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing itemId: expected 400, got %d", resp.StatusCode)
	}

	if _, err := srv.db.SqlDB.Exec(`DELETE FROM users`); err != nil {
		t.Fatalf("delete users: %v", err)
	}

	resp = srv.postJSON(t, "/addtocart", map[string]any{"itemId": 1}, auth)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted user: expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_AddToCart_NormalisesItemID(t *testing.T) {
	srv := newTestServer(t)
	token := signupToken(t, newTestServices(t, srv.db).Auth, "norm@example.com")
	auth := http.Header{"Auth-Token": {token}}

	for _, item := range []string{`7`, `7.0`, `7e0`, `"7"`} {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/addtocart", strings.NewReader(`{"itemId":`+item+`}`))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header = auth.Clone()
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /addtocart: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("itemId %s: expected 200, got %d", item, resp.StatusCode)
		}
	}

	for _, item := range []string{`{"x":1}`, `true`, `[7]`, `7.5`} {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/addtocart", strings.NewReader(`{"itemId":`+item+`}`))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header = auth.Clone()
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /addtocart: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("itemId %s: expected 400, got %d", item, resp.StatusCode)
		}
	}

	resp := srv.postJSON(t, "/getcart", map[string]any{}, auth)
	cart := decode[map[string]int](t, resp)
	if len(cart) != 1 || cart["7"] != 4 {
		t.Fatalf("expected {7:4}, got %v", cart)
	}
}

func TestIntegration_CatalogViews(t *testing.T) {
	srv := newTestServer(t)

	for i := 1; i <= 9; i++ {
		category := "men"
		if i%2 == 1 {
			category = "women"
		}
		resp := srv.postJSON(t, "/addproduct", map[string]any{
			"name": fmt.Sprintf("Product %d", i), "image": "http://shop.test/images/x.png",
			"category": category, "new_price": 10.5, "old_price": 20,
		}, nil)
		body := decode[map[string]any](t, resp)
		if body["success"] != true || body["name"] != fmt.Sprintf("Product %d", i) {
			t.Fatalf("addproduct: unexpected body %v", body)
		}
	}

	all := srv.getProducts(t, "/allproducts")
	if len(all) != 9 || all[0].ID != 1 || all[8].ID != 9 {
		t.Fatalf("allproducts: unexpected ids %v", productIDs(all))
	}
	if !all[0].Available || all[0].Date == "" || all[0].NewPrice != 10.5 {
		t.Fatalf("allproducts: unexpected product %+v", all[0])
	}

	newest := productIDs(srv.getProducts(t, "/newcollections"))
	if fmt.Sprint(newest) != "[2 3 4 5 6 7 8 9]" {
		t.Fatalf("newcollections: expected [2..9], got %v", newest)
	}

	popular := productIDs(srv.getProducts(t, "/popularinwomen"))
	if fmt.Sprint(popular) != "[1 3 5 7]" {
		t.Fatalf("popularinwomen: expected [1 3 5 7], got %v", popular)
	}

	men := productIDs(srv.getProducts(t, "/popular/men"))
	if fmt.Sprint(men) != "[2 4 6 8]" {
		t.Fatalf("popular/men: expected [2 4 6 8], got %v", men)
	}

	resp := srv.postJSON(t, "/removeproduct", map[string]any{"id": 1, "name": "Product 1"}, nil)
	if body := decode[map[string]any](t, resp); body["success"] != true || body["name"] != "Product 1" {
		t.Fatalf("removeproduct: unexpected body %v", body)
	}
	resp = srv.postJSON(t, "/removeproduct", map[string]any{"id": "404", "name": "ghost"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("removeproduct missing: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if got := len(srv.getProducts(t, "/allproducts")); got != 8 {
		t.Fatalf("expected 8 products after remove, got %d", got)
	}
}

func TestIntegration_EmptyCatalog(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/allproducts", "/newcollections", "/popularinwomen"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("GET %s: expected [], got %q", path, body)
		}
	}
}

func TestIntegration_AddProductValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.postJSON(t, "/addproduct", map[string]any{"name": "", "category": "men"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["success"] != false {
		t.Fatalf("expected failure envelope, got %v", body)
	}
}

func TestIntegration_UploadAndServeImage(t *testing.T) {
	srv := newTestServer(t)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("product", "shirt.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(img.Bytes())
	mw.Close()

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", resp.StatusCode)
	}
	uploaded := decode[map[string]any](t, resp)
	if uploaded["success"] != float64(1) {
		t.Fatalf("upload: unexpected body %v", uploaded)
	}
	url, _ := uploaded["image_url"].(string)
	key, ok := strings.CutPrefix(url, "http://shop.test/images/")
	if !ok {
		t.Fatalf("upload: unexpected image_url %q", url)
	}

	resp, err = http.Get(srv.URL + "/images/" + key)
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	served, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("serve: got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.Equal(served, img.Bytes()) {
		t.Fatal("serve: bytes differ from upload")
	}

	resp, err = http.Get(srv.URL + "/images/missing.png")
	if err != nil {
		t.Fatalf("GET missing image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing image: expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_StorageFaultIsServiceUnavailable(t *testing.T) {
	srv := newTestServer(t)

	if err := srv.db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	resp, err := http.Get(srv.URL + "/allproducts")
	if err != nil {
		t.Fatalf("GET /allproducts: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["success"] != false || body["errors"] != "service unavailable" {
		t.Fatalf("unexpected body %v", body)
	}
}
