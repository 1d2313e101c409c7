package client

import (
	"context"
	"net/url"

	apperrors "docbook/pkg/errors"
	"docbook/pkg/model"
)

const (
	doctorsResource = "doctors"
	doctorResource  = "doctor"
)

type DoctorClient struct {
	httpClient *HttpClient
}

func NewDoctorClient(httpClient *HttpClient) *DoctorClient {
	return &DoctorClient{httpClient: httpClient}
}

func (c *DoctorClient) GetAll(ctx context.Context) ([]model.Doctor, error) {
	resp, err := c.httpClient.GET(ctx, "/doctor")
	if err != nil {
		return nil, apperrors.FetchFailure(doctorsResource, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchError(doctorsResource, resp)
	}

	var doctors []model.Doctor
	if err := resp.DecodeJSON(&doctors); err != nil {
		return nil, apperrors.FetchFailure(doctorsResource, resp.StatusCode, err)
	}
	return doctors, nil
}

func (c *DoctorClient) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	resp, err := c.httpClient.GET(ctx, "/doctor/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.FetchFailure(doctorResource, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchError(doctorResource, resp)
	}

	var doctor model.Doctor
	if err := resp.DecodeJSON(&doctor); err != nil {
		return nil, apperrors.FetchFailure(doctorResource, resp.StatusCode, err)
	}
	return &doctor, nil
}

func fetchError(resource string, resp *Response) *apperrors.AppError {
	appErr := apperrors.FetchFailure(resource, resp.StatusCode, nil)
	if msg := GetErrorMessage(resp); msg != "" {
		appErr.Details = map[string]any{"server_message": msg}
	}
	return appErr
}
