package validators

import (
	"docbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// Only confirmed and cancel are ever stored; finished is derived on read.
var storedStatuses = []string{
	string(model.StatusConfirmed),
	string(model.StatusCancelled),
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "doctor_id", "date", "start", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"doctor_id":  bson.M{"bsonType": "string", "minLength": 1},
			"date":       bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"start":      bson.M{"bsonType": hourType, "minimum": 0, "maximum": 23},
			"status":     bson.M{"bsonType": "string", "enum": storedStatuses},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

// SlotLockValidator matches ids of the form booking_lock_<doctor>_<date>_<HH:MM>.
var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string", "pattern": `^booking_lock_.+_\d{4}-\d{2}-\d{2}_\d{2}:\d{2}$`},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
