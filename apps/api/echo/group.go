package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core/group"
)

type groupApi struct {
	svc        group.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := groupApi{
		svc:        deps.GroupSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, staffMiddleware())

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/members", api.queryMembers, staffMiddleware())
	dg.POST("/members", api.addMember, staffMiddleware())
	dg.DELETE("/members/:studentID", api.removeMember, staffMiddleware())
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	g, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	g, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *groupApi) queryMembers(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	members, err := api.svc.Members(id)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []int{}
	}
	return ctx.JSON(http.StatusOK, MembersResponse{StudentIDs: members})
}

func (api *groupApi) addMember(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data AddMemberRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddMemberRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	if err = api.svc.AddMember(id, data.StudentID); err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	studentID, err := strconv.Atoi(ctx.Param("studentID"))
	if err != nil {
		return errHttpNotFound
	}

	if err = api.svc.RemoveMember(id, studentID); err != nil {
		return errors.Wrap(err, "removing member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	AddMemberRequest struct {
		StudentID int `json:"student_id" validate:"required"`
	}

	MembersResponse struct {
		StudentIDs []int `json:"student_ids"`
	}
)
