package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/internal/service/account"
	"github.com/devtrackhq/devtrack/internal/service/collab"
	"github.com/devtrackhq/devtrack/internal/service/health"
	"github.com/devtrackhq/devtrack/internal/service/project"
	"github.com/devtrackhq/devtrack/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	account  account.Service
	project  project.Service
	collab   collab.Service
	health   health.Service
	upgrader websocket.Upgrader
	limiter  RateLimiter

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 120
	rateLimitWebsocket = 30
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, accountSvc account.Service, projectSvc project.Service, collabSvc collab.Service, healthSvc health.Service, limiter RateLimiter) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		logger:  logger,
		account: accountSvc,
		project: projectSvc,
		collab:  collabSvc,
		health:  healthSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter: limiter,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/system/health", r.audit("/system/health", r.handleHealth))
	r.mux.Handle("/system/metrics", promhttp.Handler())
	r.mux.HandleFunc("/auth/register", r.audit("/auth/register", r.withRateLimit("/auth/register", rateLimitRegister, rateWindowDefault, rateLimitKeyIP, r.handleRegister)))
	r.mux.HandleFunc("/auth/login", r.audit("/auth/login", r.withRateLimit("/auth/login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/auth/profile", r.audit("/auth/profile", r.handlerAuthRate("/auth/profile", rateLimitUserWrite, rateWindowDefault, r.handleProfile)))
	r.mux.HandleFunc("/auth/account", r.audit("/auth/account", r.handlerAuthRate("/auth/account", rateLimitUserWrite, rateWindowDefault, r.handleAccount)))
	r.mux.HandleFunc("/projects", r.audit("/projects", r.handlerAuthRate("/projects", rateLimitUserWrite, rateWindowDefault, r.handleProjects)))
	r.mux.HandleFunc("/projects/", r.audit("/projects/", r.handlerAuthRate("/projects/", rateLimitUserWrite, rateWindowDefault, r.handleProjectSubroutes)))
	r.mux.HandleFunc("/collaboration/", r.audit("/collaboration/", r.handlerAuthRate("/collaboration/", rateLimitUserWrite, rateWindowDefault, r.handleCollaboration)))
	r.mux.HandleFunc("/ws/deployments", r.audit("/ws/deployments", r.handlerAuthRate("/ws/deployments", rateLimitWebsocket, rateWindowRealtime, r.handleDeploymentsWS)))
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.account.Register(req.Context(), payload.Email, payload.FullName, payload.Password)
	if err != nil {
		r.writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   userView(user),
		"tokens": tokens,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.account.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   userView(user),
		"tokens": tokens,
	})
}

func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		user, err := r.account.Profile(req.Context(), info.UserID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, userView(user))
	case http.MethodPut:
		var payload account.ProfileUpdate
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := r.account.UpdateProfile(req.Context(), info.UserID, payload)
		if err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, userView(user))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleAccount(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	if err := r.account.Deactivate(req.Context(), info.UserID); err != nil {
		r.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (r *Router) handleProjects(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPost:
		var payload project.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		proj, err := r.project.Create(req.Context(), info.UserID, payload)
		if err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, projectView(proj))
	case http.MethodGet:
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
		filter := domain.ProjectFilter{
			Status:          strings.TrimSpace(req.URL.Query().Get("status")),
			IncludeArchived: req.URL.Query().Get("include_archived") == "true",
			Limit:           limit,
			Offset:          offset,
		}
		projects, err := r.project.List(req.Context(), info.UserID, filter)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		views := make([]map[string]any, 0, len(projects))
		for i := range projects {
			views = append(views, projectView(&projects[i]))
		}
		writeJSON(w, http.StatusOK, views)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleProjectSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/projects/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	projectID := parts[0]
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch {
	case len(parts) == 1:
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		proj, err := r.project.Get(req.Context(), info.UserID, projectID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, projectView(proj))
	case len(parts) == 2 && parts[1] == "status":
		if req.Method != http.MethodPatch {
			r.methodNotAllowed(w)
			return
		}
		var payload struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		proj, err := r.project.UpdateStatus(req.Context(), projectID, payload.Status, info.UserID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, projectView(proj))
	case len(parts) == 2 && parts[1] == "deployments":
		r.handleDeployments(w, req, projectID, info)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleDeployments(w http.ResponseWriter, req *http.Request, projectID string, info authInfo) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			Outcome string `json:"outcome"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		record, err := r.project.RecordDeployment(req.Context(), projectID, info.UserID, payload.Outcome, payload.Message)
		if err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, deploymentView(record))
	case http.MethodGet:
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		records, err := r.project.ListDeployments(req.Context(), info.UserID, projectID, limit)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		views := make([]map[string]any, 0, len(records))
		for i := range records {
			views = append(views, deploymentView(&records[i]))
		}
		writeJSON(w, http.StatusOK, views)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCollaboration(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/collaboration/")
	parts := strings.Split(trimmed, "/")
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch {
	case len(parts) == 1 && parts[0] == "my-invitations":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		invitations, err := r.collab.ListMyInvitations(req.Context(), info.UserID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, invitationViews(invitations))
	case len(parts) == 3 && parts[0] == "projects" && parts[2] == "invitations":
		r.handleProjectInvitations(w, req, parts[1], info)
	case len(parts) == 3 && parts[0] == "projects" && parts[2] == "collaborators":
		r.handleCollaborators(w, req, parts[1], info)
	case len(parts) == 3 && parts[0] == "invitations" && (parts[2] == "accept" || parts[2] == "decline"):
		r.handleInvitationTransition(w, req, parts[1], parts[2], info)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleProjectInvitations(w http.ResponseWriter, req *http.Request, projectID string, info authInfo) {
	switch req.Method {
	case http.MethodPost:
		var payload collab.InviteInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		invitation, err := r.collab.Invite(req.Context(), projectID, info.UserID, payload)
		if err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, invitationView(invitation))
	case http.MethodGet:
		invitations, err := r.collab.ListProjectInvitations(req.Context(), projectID, info.UserID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, invitationViews(invitations))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCollaborators(w http.ResponseWriter, req *http.Request, projectID string, info authInfo) {
	switch req.Method {
	case http.MethodGet:
		members, err := r.collab.ListCollaborators(req.Context(), projectID, info.UserID)
		if err != nil {
			r.writeServiceError(w, err, http.StatusInternalServerError)
			return
		}
		views := make([]map[string]any, 0, len(members))
		for _, m := range members {
			views = append(views, map[string]any{
				"project_id": m.ProjectID,
				"user_id":    m.UserID,
				"role":       m.Role,
				"created_at": m.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPatch:
		var payload struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := r.collab.UpdateCollaboratorRole(req.Context(), projectID, info.UserID, payload.UserID, payload.Role); err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case http.MethodDelete:
		var payload struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := r.collab.RemoveCollaborator(req.Context(), projectID, info.UserID, payload.UserID); err != nil {
			r.writeServiceError(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleInvitationTransition(w http.ResponseWriter, req *http.Request, token, action string, info authInfo) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var (
		invitation *domain.Invitation
		err        error
	)
	if action == "accept" {
		invitation, err = r.collab.Accept(req.Context(), token, info.UserID)
	} else {
		invitation, err = r.collab.Decline(req.Context(), token, info.UserID)
	}
	if err != nil {
		r.writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, invitationView(invitation))
}

func (r *Router) handleDeploymentsWS(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	projectID := req.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project_id query parameter required")
		return
	}
	if _, err := r.project.Get(req.Context(), info.UserID, projectID); err != nil {
		r.writeServiceError(w, err, http.StatusForbidden)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.project.Hub().Register(projectID, client)
	go func() {
		defer func() {
			r.project.Hub().Unregister(projectID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// handleHealth reports aggregated dependency status. It never propagates a
// probe failure: the worst case is a degraded/down payload with 503.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	report := r.health.Check(req.Context())
	code := http.StatusOK
	if report.Status != health.StatusOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// writeServiceError maps service sentinels onto status codes; unknown errors
// fall through to the handler-supplied default.
func (r *Router) writeServiceError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, account.ErrInvalidCredentials) || errors.Is(err, account.ErrAccountDeactivated):
		status = http.StatusUnauthorized
	case errors.Is(err, project.ErrNotAuthorized) || errors.Is(err, collab.ErrNotAuthorized) || errors.Is(err, collab.ErrNotInvitee):
		status = http.StatusForbidden
	case errors.Is(err, account.ErrEmailTaken) || errors.Is(err, project.ErrNameTaken) ||
		errors.Is(err, project.ErrProjectArchived) || errors.Is(err, collab.ErrAlreadyInvited) ||
		errors.Is(err, collab.ErrAlreadyMember) || errors.Is(err, collab.ErrInvitationExpired) ||
		errors.Is(err, collab.ErrInvitationTerminal):
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

func (r *Router) mustAuthInfo(w http.ResponseWriter, req *http.Request) (authInfo, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return authInfo{}, false
	}
	return info, true
}

func userView(u *domain.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"username":    u.Username,
		"full_name":   u.FullName,
		"bio":         u.Bio,
		"github_link": u.GithubLink,
		"active":      u.Active,
		"created_at":  u.CreatedAt,
	}
}

func projectView(p *domain.Project) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"owner_id":        p.OwnerID,
		"name":            p.Name,
		"github_username": p.GithubUsername,
		"repo_url":        p.RepoURL,
		"database_name":   p.DatabaseName,
		"domain_name":     p.DomainName,
		"details":         p.Details,
		"status":          p.Status,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
}

func deploymentView(d *domain.DeploymentRecord) map[string]any {
	return map[string]any{
		"id":           d.ID,
		"project_id":   d.ProjectID,
		"outcome":      d.Outcome,
		"message":      d.Message,
		"triggered_by": d.TriggeredBy,
		"created_at":   d.CreatedAt,
	}
}

func invitationView(i *domain.Invitation) map[string]any {
	view := map[string]any{
		"token":      i.Token,
		"project_id": i.ProjectID,
		"inviter_id": i.InviterID,
		"email":      i.Email,
		"role":       i.Role,
		"status":     i.Status,
		"created_at": i.CreatedAt,
		"expires_at": i.ExpiresAt,
	}
	if i.InviteeID != nil {
		view["invitee_id"] = *i.InviteeID
	}
	return view
}

func invitationViews(invitations []domain.Invitation) []map[string]any {
	views := make([]map[string]any, 0, len(invitations))
	for i := range invitations {
		views = append(views, invitationView(&invitations[i]))
	}
	return views
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := sr.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
