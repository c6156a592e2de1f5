package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketOf(t *testing.T) {
	testCases := []struct {
		time   string
		bucket string
		ok     bool
	}{
		{"8:30AM - 11:00AM", "morning", true},
		{"11:59AM - 1:00PM", "morning", true},
		{"12:00PM - 1:30PM", "afternoon", true},
		{"4:59PM - 6:00PM", "afternoon", true},
		{"5:00PM - 7:50PM", "evening", true},
		{"12:30AM - 2:00AM", "morning", true},
		{"9:00PM - 10:00PM", "evening", true},
		{"13:00 - 14:00", "afternoon", true},
		{"", "", false},
		{"Asynchronous", "", false},
		{"asynchronous", "", false},
		{"TBA", "", false},
		{"See comments", "", false},
	}

	for _, test := range testCases {
		t.Run(test.time, func(t *testing.T) {
			bucket, ok := bucketOf(test.time)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.bucket, bucket)
		})
	}
}
