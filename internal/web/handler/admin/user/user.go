// Package user implements the admin pages for managing accounts: a list
// with search and pagination, create, edit and delete.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/dashboard"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/navigation"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList renders the account table.
	TemplateList = "admin/user/list"
	// TemplateForm renders the create and edit form.
	TemplateForm = "admin/user/form"

	// DefaultPageSize keeps the account table at a readable length.
	DefaultPageSize = 25
	// maxPageSize bounds what the pageSize query parameter may ask for.
	maxPageSize = 100
)

// Service provides the admin account pages.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers the account management routes. Every route requires the
// admin.users permission.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	admin := auth.RequirePermission(authService, auth.PermAdminUsers)

	app.Get(Path, admin, s.List)
	app.Get(Path+"/new", admin, s.New)
	app.Post(Path, admin, s.Create)
	app.Get(Path+"/:id/edit", admin, s.Edit)
	app.Post(Path+"/:id", admin, s.Update)
	app.Post(Path+"/:id/delete", admin, s.Delete)
}

// userForm is the form payload shared by Create and Update. A password only
// makes sense for local accounts, OAuth accounts authenticate at their
// provider.
type userForm struct {
	Username   string `form:"username"    validate:"required,min=3,max=100"`
	Email      string `form:"email"       validate:"required,email,max=255"`
	FirstName  string `form:"firstname"   validate:"max=100"`
	LastName   string `form:"lastname"    validate:"max=100"`
	AuthSource string `form:"source"      validate:"required,oneof=local oauth"`
	Provider   string `form:"provider"    validate:"max=100"`
	ExternalID string `form:"external_id"`
	Password   string `form:"password"`
	Active     bool   `form:"active"`
	RoleID     uint   `form:"role_id"`
}

// applyForm copies the submitted fields onto the account. The stored
// password hash is only replaced when a new password was typed for a local
// account.
func applyForm(user *models.User, in userForm) {
	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.AuthSource = models.AuthSource(in.AuthSource)
	user.OAuthProvider = in.Provider
	user.ExternalID = in.ExternalID
	user.Active = in.Active
	user.RoleID = in.RoleID

	if in.AuthSource == string(models.AuthSourceLocal) && in.Password != "" {
		user.Password = models.HashPassword(in.Password)
	}
}

// currentUserID resolves the logged-in user from the request's session
// cookie, zero when there is none.
func currentUserID(c *fiber.Ctx) uint64 {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return 0
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0
	}

	return sessionData.User.ID
}

// pathID parses the :id route parameter, zero when unusable.
func pathID(c *fiber.Ctx) int {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0
	}

	return id
}

// crumbs builds the breadcrumb trail of the account pages. With no leaf the
// trail ends at the user list itself.
func crumbs(pageTitle, leafTitle, leafURL string) *navigation.Context {
	nav := navigation.NewContext(pageTitle, "admin").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false)

	if leafTitle == "" {
		return nav.AddBreadcrumb("Users", Path, true)
	}

	return nav.AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(leafTitle, leafURL, true)
}

// renderListError renders the account table shell with just an error
// message.
func renderListError(c *fiber.Ctx, status int, msg, search string) error {
	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation": crumbs("Users", "", ""),
		"Error":      msg,
		"Search":     search,
	}, handler.BaseLayout)
}

// renderFormError renders the form template with just an error message.
func renderFormError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Error": msg,
	}, handler.BaseLayout)
}

// renderForm shows the account form, blank for a new account or filled
// from a stored one.
func renderForm(c *fiber.Ctx, nav *navigation.Context, user models.User, isCreate bool, roles []models.Role) error {
	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       user,
		"IsCreate":   isCreate,
		"Roles":      roles,
	}, handler.BaseLayout)
}

// roleOptions lists the selectable roles for the form.
func (s *Service) roleOptions() ([]models.Role, error) {
	var roles []models.Role

	return roles, s.db.Order("name ASC").Find(&roles).Error
}

// loadAccount resolves an account by primary key for the form pages. On a
// nil account the response has already been written and the returned error
// is the handler's result.
func (s *Service) loadAccount(c *fiber.Ctx, id int) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, id).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, c.Redirect(Path)
	default:
		log.Error().Err(err).Int("id", id).Msg("load user failed")

		return nil, renderFormError(c, fiber.StatusInternalServerError, "Failed to load user")
	}
}

// List shows the account table with search and pagination.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	tx := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where(
			"username LIKE ? OR email LIKE ? OR external_id LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return renderListError(c, fiber.StatusInternalServerError, "Failed to load users", search)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages == 0 {
		pages = 1
	}

	if page > pages {
		page = pages
	}

	var accounts []models.User

	offset := (page - 1) * pageSize
	if err := tx.Preload("Role").Order("id DESC").Limit(pageSize).Offset(offset).Find(&accounts).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return renderListError(c, fiber.StatusInternalServerError, "Failed to load users", search)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation":    crumbs("Users", "", ""),
		"Users":         accounts,
		"CurrentUserID": currentUserID(c),
		"Search":        search,
		"Page":          page,
		"PageSize":      pageSize,
		"TotalItems":    total,
		"TotalPages":    pages,
		"HasPrev":       page > 1,
		"HasNext":       page < pages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
	}, handler.BaseLayout)
}

// New shows the account creation form with the selectable roles.
func (s *Service) New(c *fiber.Ctx) error {
	roles, err := s.roleOptions()
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return renderFormError(c, fiber.StatusInternalServerError, "Failed to load roles")
	}

	nav := crumbs("New User", "New", Path+"/new")

	return renderForm(c, nav, models.User{AuthSource: models.AuthSourceLocal, Active: true}, true, roles)
}

// Create adds an account from the submitted form.
func (s *Service) Create(c *fiber.Ctx) error {
	var in userForm

	if err := c.BodyParser(&in); err != nil {
		return renderListError(c, fiber.StatusBadRequest, "Invalid form data", "")
	}

	if in.AuthSource != string(models.AuthSourceLocal) {
		in.Password = ""
	}

	if err := s.validator.Struct(in); err != nil {
		return renderListError(c, fiber.StatusBadRequest, "Please correct the highlighted errors", "")
	}

	var user models.User

	applyForm(&user, in)

	// new accounts land in the read-only role unless one was picked
	if user.RoleID == 0 {
		var gamma models.Role
		if err := s.db.Where("name = ?", auth.RoleGamma).First(&gamma).Error; err == nil && gamma.ID != 0 {
			user.RoleID = gamma.ID
		}
	}

	if err := s.db.Create(&user).Error; err != nil {
		// usually a unique constraint on the username
		return renderListError(c, fiber.StatusBadRequest, "Failed to create user: "+err.Error(), "")
	}

	return c.Redirect(Path)
}

// Edit shows the form preloaded with one account.
func (s *Service) Edit(c *fiber.Ctx) error {
	id := pathID(c)
	if id == 0 {
		return c.Redirect(Path)
	}

	user, respErr := s.loadAccount(c, id)
	if user == nil {
		return respErr
	}

	roles, err := s.roleOptions()
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return renderFormError(c, fiber.StatusInternalServerError, "Failed to load roles")
	}

	nav := crumbs("Edit User", "Edit", Path+"/"+strconv.Itoa(id)+"/edit")

	return renderForm(c, nav, *user, false, roles)
}

// Update applies the submitted form to one account.
func (s *Service) Update(c *fiber.Ctx) error {
	id := pathID(c)
	if id == 0 {
		return c.Redirect(Path)
	}

	var in userForm
	if err := c.BodyParser(&in); err != nil {
		return renderFormError(c, fiber.StatusBadRequest, "Invalid form data")
	}

	if in.AuthSource != string(models.AuthSourceLocal) {
		in.Password = ""
	}

	if err := s.validator.Struct(in); err != nil {
		return renderFormError(c, fiber.StatusBadRequest, "Please correct the highlighted errors")
	}

	user, respErr := s.loadAccount(c, id)
	if user == nil {
		return respErr
	}

	applyForm(user, in)

	if err := s.db.Save(user).Error; err != nil {
		return renderFormError(c, fiber.StatusBadRequest, "Failed to update user: "+err.Error())
	}

	return c.Redirect(Path)
}

// Delete removes an account. Members of the Admin role are protected, and
// the logged-in account can not delete itself.
func (s *Service) Delete(c *fiber.Ctx) error {
	id := pathID(c)
	if id == 0 {
		return c.Redirect(Path)
	}

	var user models.User
	if err := s.db.Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return renderListError(c, fiber.StatusInternalServerError, "Failed to load user.", "")
	}

	if user.Role.Name == auth.RoleAdmin {
		return renderListError(c, fiber.StatusForbidden, "Cannot delete Admin users.", "")
	}

	if currentUserID(c) == uint64(id) {
		return renderListError(c, fiber.StatusBadRequest, "You cannot delete your own account.", "")
	}

	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return renderListError(c, fiber.StatusBadRequest, "Failed to delete user: "+err.Error(), "")
	}

	return c.Redirect(Path)
}
