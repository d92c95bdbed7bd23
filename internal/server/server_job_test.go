package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
)

func jobForm(t *testing.T, fields map[string]string) *requestBody {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &requestBody{reader: body, contentType: writer.FormDataContentType()}
}

func TestCreateJobPostRejectsNonMultipart(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.mintToken(t, "emp1@example.com", "employer")
	payload := bytes.NewBufferString(`{"job_title":"Mason"}`)
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", token,
		&requestBody{reader: payload, contentType: "application/json"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Content-Type must be multipart/form-data" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCreateJobPostMissingRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.mintToken(t, "emp2@example.com", "employer")
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", token,
		jobForm(t, map[string]string{"job_title": "Mason", "type_of_work": "masonry"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Missing required fields: employer_id, job_title, and type_of_work are required" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCreateJobPostDefaultsAndEcho(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.mintToken(t, "emp3@example.com", "employer")
	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", token,
		jobForm(t, map[string]string{
			"employer_id":  uid,
			"job_title":    "Mason",
			"type_of_work": "masonry",
			"city":         "Pune",
		}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Job post created successfully" {
		t.Fatalf("message = %v", body["message"])
	}
	post, _ := body["jobPost"].(map[string]any)
	if post == nil {
		t.Fatal("jobPost missing from response")
	}
	if post["employer_id"] != uid || post["job_title"] != "Mason" || post["type_of_work"] != "masonry" {
		t.Fatalf("echoed fields wrong: %v", post)
	}
	if post["vacancies"] != float64(0) {
		t.Fatalf("vacancies = %v, want default 0", post["vacancies"])
	}
	location, _ := post["location"].(map[string]any)
	if location == nil || location["city"] != "Pune" {
		t.Fatalf("location = %v", location)
	}
	if post["id"] == "" || post["id"] == nil {
		t.Fatal("id should be generated")
	}
}

func TestListJobPostsFiltersIntersection(t *testing.T) {
	env := newTestEnv(t)
	employerToken, _ := env.mintToken(t, "emp4@example.com", "employer")
	workerToken, _ := env.mintToken(t, "wrk4@example.com", "worker")

	create := func(employerID, typeOfWork string) {
		resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", employerToken,
			jobForm(t, map[string]string{
				"employer_id":  employerID,
				"job_title":    "Job",
				"type_of_work": typeOfWork,
			}))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}
	create("e1", "plumbing")
	create("e1", "masonry")
	create("e2", "plumbing")

	resp := doRequest(t, http.MethodGet,
		env.srv.URL+"/api/job/all?employer_id=e1&type_of_work=plumbing", workerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	posts, _ := body["jobPosts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("intersection returned %d posts, want 1", len(posts))
	}
	first, _ := posts[0].(map[string]any)
	if first["employer_id"] != "e1" || first["type_of_work"] != "plumbing" {
		t.Fatalf("wrong post matched: %v", first)
	}

	// Non-numeric limit is ignored.
	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/job/all?limit=abc", workerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list with bad limit status = %d, want 200", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	posts, _ = body["jobPosts"].([]any)
	if len(posts) != 3 {
		t.Fatalf("bad limit should be ignored, got %d posts", len(posts))
	}
}

func TestGetJobPostByID(t *testing.T) {
	env := newTestEnv(t)
	employerToken, _ := env.mintToken(t, "emp5@example.com", "employer")
	anyToken, _ := env.mintToken(t, "any5@example.com", "worker")

	resp := doRequest(t, http.MethodPost, env.srv.URL+"/api/job/create", employerToken,
		jobForm(t, map[string]string{
			"employer_id":  "e9",
			"job_title":    "Welder",
			"type_of_work": "welding",
		}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody(t, resp)
	post, _ := created["jobPost"].(map[string]any)
	id, _ := post["id"].(string)

	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/job/job-post/"+id, anyToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	got, _ := body["jobPost"].(map[string]any)
	if got == nil || got["id"] != id {
		t.Fatalf("jobPost = %v", got)
	}

	resp = doRequest(t, http.MethodGet, env.srv.URL+"/api/job/job-post/does-not-exist", anyToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing post status = %d, want 404", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "Job post not found" {
		t.Fatalf("error = %v", body["error"])
	}
	if _, ok := body["jobPost"]; ok {
		t.Fatal("404 body must not carry a jobPost key")
	}
}
