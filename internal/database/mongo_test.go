package database

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestHelloReplyDetectsTransactionSupport(t *testing.T) {
	cases := []struct {
		name  string
		reply bson.D
		want  bool
	}{
		{"standalone", bson.D{{Key: "isWritablePrimary", Value: true}}, false},
		{"replica set", bson.D{{Key: "isWritablePrimary", Value: true}, {Key: "setName", Value: "rs0"}}, true},
		{"mongos", bson.D{{Key: "msg", Value: "isdbgrid"}}, true},
	}
	for _, tc := range cases {
		raw, err := bson.Marshal(tc.reply)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		var h helloReply
		if err := bson.Unmarshal(raw, &h); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if got := h.supportsTransactions(); got != tc.want {
			t.Errorf("%s: supportsTransactions = %v, want %v", tc.name, got, tc.want)
		}
	}
}
