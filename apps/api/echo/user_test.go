package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	createUser(t, app.usrRepo, "awa", "awa@test.cd", "passwd", user.RoleStaff, true)
	createUser(t, app.usrRepo, "gone", "gone@test.cd", "passwd", user.RoleStudent, false)

	path := "/v1/users/login"

	tests := []httpTest{
		{name: "empty credentials", method: http.MethodPost, path: path, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			})},
		{name: "unknown user", method: http.MethodPost, path: path,
			body:     []byte(`{"username": "nobody", "password": "passwd"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "wrong password", method: http.MethodPost, path: path,
			body:     []byte(`{"username": "awa", "password": "wrong"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "deactivated account", method: http.MethodPost, path: path,
			body:     []byte(`{"username": "gone", "password": "passwd"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, []byte(`{"username": "Awa ", "password": "passwd"}`))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app.usrRepo, "admin", "admin@test.cd", "passwd", user.RoleAdmin, true)
	staff := createUser(t, app.usrRepo, "staff", "staff@test.cd", "passwd", user.RoleStaff, true)
	adminToken := getToken(t, admin)
	staffToken := getToken(t, staff)

	path := "/v1/users/register"
	body := []byte(`{
		"username": "ann", "email": "ann@test.cd", "role": "student",
		"instrument": "Piano", "password": "secret-pwd", "password_confirm": "secret-pwd"
	}`)

	tests := []httpTest{
		{name: "anonymous", method: http.MethodPost, path: path, body: body,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "staff cannot register users", method: http.MethodPost, path: path, body: body, token: staffToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)},
		{name: "invalid role", method: http.MethodPost, path: path, token: adminToken,
			body: []byte(`{
				"username": "bob", "email": "bob@test.cd", "role": "teacher",
				"password": "secret-pwd", "password_confirm": "secret-pwd"
			}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of [admin staff student]"})},
		{name: "password mismatch", method: http.MethodPost, path: path, token: adminToken,
			body: []byte(`{
				"username": "bob", "email": "bob@test.cd", "role": "student",
				"password": "secret-pwd", "password_confirm": "other-pwd"
			}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("admin registers a student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, adminToken, body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.NotZero(t, usr.ID)
		assert.Equal(t, "ann", usr.Username)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.True(t, usr.IsActive)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, adminToken, []byte(`{
			"username": "ann2", "email": "ann@test.cd", "role": "student",
			"password": "secret-pwd", "password_confirm": "secret-pwd"
		}`))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)
	staff := createUser(t, app.usrRepo, "staff", "staff@test.cd", "passwd", user.RoleStaff, true)
	student := createUser(t, app.usrRepo, "ann", "ann@test.cd", "passwd", user.RoleStudent, true)
	createUser(t, app.usrRepo, "bob", "bob@test.cd", "passwd", user.RoleStudent, true)
	staffToken := getToken(t, staff)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "anonymous", method: http.MethodGet, path: "/v1/users",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student forbidden", method: http.MethodGet, path: "/v1/users", token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)},
		{name: "staff lists roles", method: http.MethodGet, path: "/v1/users/roles", token: staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, user.AllRoles)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("staff lists all users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", staffToken)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 3)
	})

	t.Run("role filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?role=student", staffToken)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		require.Len(t, users, 2)
		for _, usr := range users {
			assert.Equal(t, user.RoleStudent, usr.Role)
		}
	})
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)
	staff := createUser(t, app.usrRepo, "staff", "staff@test.cd", "passwd", user.RoleStaff, true)
	ann := createUser(t, app.usrRepo, "ann", "ann@test.cd", "passwd", user.RoleStudent, true)
	bob := createUser(t, app.usrRepo, "bob", "bob@test.cd", "passwd", user.RoleStudent, true)
	staffToken := getToken(t, staff)
	annToken := getToken(t, ann)

	tests := []httpTest{
		{name: "student reads own profile", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", ann.ID),
			token: annToken, wantCode: http.StatusOK, wantData: marchallObj(t, ann)},
		{name: "student cannot read another profile", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", bob.ID),
			token: annToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "staff reads any profile", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", bob.ID),
			token: staffToken, wantCode: http.StatusOK, wantData: marchallObj(t, bob)},
		{name: "unknown id", method: http.MethodGet, path: "/v1/users/999",
			token: staffToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app.usrRepo, "admin", "admin@test.cd", "passwd", user.RoleAdmin, true)
	staff := createUser(t, app.usrRepo, "staff", "staff@test.cd", "passwd", user.RoleStaff, true)
	ann := createUser(t, app.usrRepo, "ann", "ann@test.cd", "passwd", user.RoleStudent, true)
	adminToken := getToken(t, admin)
	staffToken := getToken(t, staff)

	tests := []httpTest{
		{name: "staff cannot delete users", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", ann.ID),
			token: staffToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)},
		{name: "admin cannot delete themselves", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", admin.ID),
			token: adminToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)},
		{name: "admin deletes a user", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", ann.ID),
			token: adminToken, wantCode: http.StatusNoContent},
		{name: "already deleted", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", ann.ID),
			token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	staff := createUser(t, app.usrRepo, "staff", "staff@test.cd", "passwd", user.RoleStaff, true)
	token := getToken(t, staff)

	t.Run("valid token is refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("refresh window expired", func(t *testing.T) {
		oldClaims := GetUserClaims(staff, 1 /* way past the refresh window */)
		oldToken, err := GenerateToken(oldClaims)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", oldToken)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		}, rec)
	})
}
