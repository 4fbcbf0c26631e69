package handlers

import (
	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var copyOptions = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: primitive.ObjectID{},
			DstType: copier.String,
			Fn: func(src interface{}) (interface{}, error) {
				id, ok := src.(primitive.ObjectID)
				if !ok {
					return nil, errors.New("expected an ObjectID")
				}
				return id.Hex(), nil
			},
		},
	},
}

func toTrackingResponse(entry *models.OrderTracking) (models.TrackingResponse, error) {
	var resp models.TrackingResponse
	if err := copier.CopyWithOption(&resp, entry, copyOptions); err != nil {
		return models.TrackingResponse{}, errors.Wrap(err, "map tracking entry")
	}
	return resp, nil
}

func toTrackingResponses(entries []models.OrderTracking) ([]models.TrackingResponse, error) {
	out := make([]models.TrackingResponse, 0, len(entries))
	for i := range entries {
		resp, err := toTrackingResponse(&entries[i])
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}
