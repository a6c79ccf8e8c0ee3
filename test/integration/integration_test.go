package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func waitReady(t *testing.T) {
	t.Helper()
	url := fmt.Sprintf("%s/healthz", baseURL())
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Skip("service not reachable at " + baseURL())
}

type product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func createProduct(t *testing.T, body string) product {
	t.Helper()
	resp, err := http.Post(baseURL()+"/products", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var p product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func deleteProduct(t *testing.T, id int64) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/products/%d", baseURL(), id), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestIntegration_OpenAPIServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_DocsServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/docs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := make([]byte, 1024)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), "swagger-ui") {
		t.Fatalf("expected swagger-ui in docs page")
	}
}

func TestIntegration_CreateGetDelete(t *testing.T) {
	waitReady(t)
	p := createProduct(t, `{"name":"Phone","price":100}`)
	if p.ID == 0 || p.Name != "Phone" {
		t.Fatalf("unexpected product: %+v", p)
	}
	resp, err := http.Get(fmt.Sprintf("%s/products/%d", baseURL(), p.ID))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if code := deleteProduct(t, p.ID); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if code := deleteProduct(t, p.ID); code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", code)
	}
}

func TestIntegration_ListContainsCreated(t *testing.T) {
	waitReady(t)
	p := createProduct(t, `{"name":"Case","price":"10"}`)
	defer deleteProduct(t, p.ID)
	resp, err := http.Get(baseURL() + "/products")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []product
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, it := range list {
		if it.ID == p.ID {
			if it.Price != 10 {
				t.Fatalf("expected price 10, got %v", it.Price)
			}
			return
		}
	}
	t.Fatalf("created product %d not listed", p.ID)
}
