package clients

import (
	"net/http"

	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/models"
)

// DefaultAdminURL is the admin API root of a local backend.
const DefaultAdminURL = "localhost:8181/v1.0/admin"

// AdminService issues user-management requests.
type AdminService struct {
	base *BaseClient
}

// NewAdminService returns client.
func NewAdminService(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *AdminService {
	return &AdminService{base: NewBaseClient(baseURL, httpClient, logger)}
}

// FindAllUsers lists every user.
func (s *AdminService) FindAllUsers() *Call[[]models.User] {
	return newCall(s.base, http.MethodGet, "/users", decodeJSON[[]models.User])
}

// Activate enables the selected accounts.
func (s *AdminService) Activate(req models.AdminRequest) *Call[NoContent] {
	return s.update(http.MethodPut, "/users/activate", req)
}

// Deactivate disables the selected accounts.
func (s *AdminService) Deactivate(req models.AdminRequest) *Call[NoContent] {
	return s.update(http.MethodPut, "/users/deactivate", req)
}

// Lock locks the selected accounts.
func (s *AdminService) Lock(req models.AdminRequest) *Call[NoContent] {
	return s.update(http.MethodPut, "/users/lock", req)
}

// Unlock unlocks the selected accounts.
func (s *AdminService) Unlock(req models.AdminRequest) *Call[NoContent] {
	return s.update(http.MethodPut, "/users/unlock", req)
}

// Delete removes the selected accounts. The backend expects the usernames in the body
// of the DELETE request.
func (s *AdminService) Delete(req models.AdminRequest) *Call[NoContent] {
	return s.update(http.MethodDelete, "/users/delete", req)
}

// ChangeRole replaces roles of the selected accounts.
func (s *AdminService) ChangeRole(req models.ChangeRoleRequest) *Call[NoContent] {
	return s.update(http.MethodPost, "/users/role", req)
}

func (s *AdminService) update(method, path string, body any) *Call[NoContent] {
	return newCall(s.base, method, path, decodeNone).withBody(body)
}
