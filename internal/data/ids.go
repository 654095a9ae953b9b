package data

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// ParseID converts a hex identifier from the transport layer into an
// ObjectID. Malformed input is rejected here with an invalid-argument
// error rather than passed through to the driver.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, apperr.InvalidArgf("malformed id %q", hex)
	}
	return id, nil
}
