package glide_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

func TestClauses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "equals", got: glide.Equals("active", "true"), want: "active=true"},
		{name: "not equals", got: glide.NotEquals("state", "7"), want: "state!=7"},
		{name: "contains", got: glide.Contains("short_description", "disk"), want: "short_descriptionLIKEdisk"},
		{name: "starts with", got: glide.StartsWith("number", "INC"), want: "numberSTARTSWITHINC"},
		{name: "in", got: glide.In("priority", "1", "2"), want: "priorityIN1,2"},
		{name: "is empty", got: glide.IsEmpty("assigned_to"), want: "assigned_toISEMPTY"},
		{name: "is not empty", got: glide.IsNotEmpty("assigned_to"), want: "assigned_toISNOTEMPTY"},
		{name: "order by", got: glide.OrderBy("number"), want: "ORDERBYnumber"},
		{name: "order by desc", got: glide.OrderByDesc("number"), want: "ORDERBYDESCnumber"},
		{name: "and", got: glide.And("a=1", "", "b=2"), want: "a=1^b=2"},
		{name: "or", got: glide.Or("a=1", "b=2"), want: "a=1^ORb=2"},
		{name: "empty or", got: glide.Or(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.got)
		})
	}
}
