package main

import (
	"context"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome or Chromium binary found")
}

func TestE2E(t *testing.T) {
	requireBrowser(t)

	e, stub := newTestApp(t, true)
	ts := httptest.NewServer(e)
	defer ts.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	t.Run("CreatePatient", func(t *testing.T) {
		var msg string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL+"/new_patient"),
			chromedp.WaitVisible(`input[name="last_name"]`, chromedp.ByQuery),
			chromedp.SendKeys(`input[name="last_name"]`, "Smith", chromedp.ByQuery),
			chromedp.SendKeys(`input[name="given_name"]`, "Jane", chromedp.ByQuery),
			chromedp.SetValue(`select[name="gender"]`, "female", chromedp.ByQuery),
			chromedp.SetValue(`input[name="birth_date"]`, "1987-01-03", chromedp.ByQuery),
			chromedp.SendKeys(`input[name="city"]`, "Springfield", chromedp.ByQuery),
			chromedp.SendKeys(`input[name="postcode"]`, "00000", chromedp.ByQuery),
			chromedp.SendKeys(`input[name="country"]`, "Testland", chromedp.ByQuery),
			chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#message`, chromedp.ByQuery),
			chromedp.Text(`#message`, &msg, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("Failed to create patient: %v", err)
		}
		if !strings.Contains(msg, "Patient successfully created with ID: a-0") {
			t.Errorf("unexpected message %q", msg)
		}
		if stub.createdCount() != 1 {
			t.Errorf("expected one create, got %d", stub.createdCount())
		}
	})

	t.Run("SearchPatient", func(t *testing.T) {
		var count string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL+"/search"),
			chromedp.WaitVisible(`select[name="resource_type"]`, chromedp.ByQuery),
			chromedp.SetValue(`select[name="resource_type"]`, "Patient", chromedp.ByQuery),
			chromedp.SendKeys(`input[name="last_name"]`, "Smith", chromedp.ByQuery),
			chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#count`, chromedp.ByQuery),
			chromedp.Text(`#count`, &count, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if !strings.Contains(count, "1 result(s)") {
			t.Errorf("unexpected result count %q", count)
		}
	})

	t.Run("SwitchServer", func(t *testing.T) {
		second := httptest.NewServer(&fhirStub{prefix: "b"})
		defer second.Close()

		var shown string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL+"/server"),
			chromedp.WaitVisible(`input[name="server_url"]`, chromedp.ByQuery),
			chromedp.SetValue(`input[name="server_url"]`, second.URL+"/fhir/", chromedp.ByQuery),
			chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`h1`, chromedp.ByQuery),
			chromedp.Navigate(ts.URL+"/server"),
			chromedp.Text(`#server-url`, &shown, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("Failed to switch server: %v", err)
		}
		if shown != second.URL+"/fhir/" {
			t.Errorf("expected %s, got %q", second.URL+"/fhir/", shown)
		}
	})
}
