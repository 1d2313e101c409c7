package validators

import "go.mongodb.org/mongo-driver/bson"

var hourType = []string{"double", "int", "long"}

var DoctorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"address",
			"opening_hours",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"address": bson.M{
				"bsonType": "object",
				"required": []string{"line_1", "district"},
				"properties": bson.M{
					"line_1":   bson.M{"bsonType": "string", "maxLength": 200},
					"line_2":   bson.M{"bsonType": "string", "maxLength": 200},
					"district": bson.M{"bsonType": "string", "maxLength": 100},
				},
			},

			"opening_hours": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "start", "end", "is_closed"},
					"properties": bson.M{
						"day": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  0,
							"maximum":  6,
						},
						"start": bson.M{
							"bsonType": hourType,
							"minimum":  0,
							"maximum":  24,
						},
						"end": bson.M{
							"bsonType": hourType,
							"minimum":  0,
							"maximum":  24,
						},
						"is_closed": bson.M{
							"bsonType": "bool",
						},
					},
				},
			},
		},
	},
}
