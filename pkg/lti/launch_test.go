package lti

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullLaunch() url.Values {
	return url.Values{
		"oauth_consumer_key":               {"fooBar"},
		"oauth_nonce":                      {"abc"},
		"lti_message_type":                 {"basic-lti-launch-request"},
		"context_id":                       {"foo_1"},
		"context_title":                    {"A title"},
		"context_label":                    {"A label"},
		"custom_review_chapter":            {"1.2.56"},
		"custom_xstart":                    {"$CourseSection.timeFrame.begin"},
		"ext_lms":                          {"moodle-1"},
		"launch_presentation_locale":       {"en-US"},
		"lis_course_offering_sourceid":     {"school.edu:SI182-F08"},
		"lis_course_section_sourceid":      {"school.edu:SI182-001-F08"},
		"lis_person_name_given":            {"Jane"},
		"lis_person_name_family":           {"Doe"},
		"lis_person_contact_email_primary": {"Jane.Doe@example.edu"},
		"resource_link_id":                 {"res-9"},
		"resource_link_title":              {"Week 1"},
		"tool_consumer_instance_guid":      {"lms.example.edu"},
		"user_id":                          {"u-42"},
		"roles":                            {"Learner,urn:lti:role:ims/lis/Instructor"},
	}
}

func TestLaunch_Buckets(t *testing.T) {
	l := NewLaunch(fullLaunch())

	assert.Equal(t, "fooBar", l.BucketValue(PrefixOAuth, "consumer_key"))
	assert.Equal(t, "basic-lti-launch-request", l.BucketValue(PrefixLTI, "message_type"))
	assert.Equal(t, map[string]string{"id": "foo_1", "title": "A title", "label": "A label"}, l.Bucket(PrefixContext))
	assert.Equal(t, "$CourseSection.timeFrame.begin", l.BucketValue(PrefixCustom, "xstart"))
	assert.Equal(t, "moodle-1", l.BucketValue(PrefixExt, "lms"))
	assert.Equal(t, "en-US", l.BucketValue(PrefixLaunchPresentation, "locale"))
	assert.Equal(t, "school.edu:SI182-F08", l.BucketValue(PrefixLISCourseOffering, "sourceid"))
	assert.Equal(t, "school.edu:SI182-001-F08", l.BucketValue(PrefixLISCourseSection, "sourceid"))
	assert.Equal(t, "lms.example.edu", l.BucketValue(PrefixToolConsumerInstance, "guid"))
	assert.Equal(t, "u-42", l.BucketValue(PrefixUser, "id"))
	assert.Equal(t, "foo_1", l.Param("context_id"))
	assert.Empty(t, l.Bucket(PrefixLISOutcome))
}

func TestLaunch_Identity(t *testing.T) {
	l := NewLaunch(fullLaunch())

	assert.Equal(t, "fooBar", l.ConsumerKey())
	assert.Equal(t, "Jane.Doe@example.edu", l.UserEmail())
	assert.Equal(t, "Jane.Doe@example.edu", l.UserShortName())
	assert.Equal(t, "Jane Doe", l.UserFullName())
	assert.Equal(t, "lms.example.edu:fooBar:user_id:u-42", l.UserKey())
	assert.Equal(t, "lms.example.edu:fooBar:resource_link_id:res-9", l.ResourceKey())
	assert.Equal(t, "lms.example.edu:fooBar:context_id:foo_1", l.CourseKey())
	assert.Equal(t, "Week 1", l.ResourceTitle())
	assert.Equal(t, "A title", l.CourseName())
	assert.Equal(t, "://www.gravatar.com/avatar.php?gravatar_id=cec9a32750b58ca759a02338ef43150f&size=40", l.UserImage())
}

func TestLaunch_NameFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		params    url.Values
		wantShort string
		wantFull  string
	}{
		{
			name:      "full name wins",
			params:    url.Values{"lis_person_name_full": {"Dr. J"}, "lis_person_name_given": {"Jane"}},
			wantShort: "Jane",
			wantFull:  "Dr. J",
		},
		{
			name:      "family only",
			params:    url.Values{"lis_person_name_family": {"Doe"}},
			wantShort: "Doe",
			wantFull:  "Doe",
		},
		{
			name:      "sakai email",
			params:    url.Values{"lis_person_contact_emailprimary": {"x@y.z"}},
			wantShort: "x@y.z",
			wantFull:  "x@y.z",
		},
		{
			name: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLaunch(tt.params)
			assert.Equal(t, tt.wantShort, l.UserShortName())
			assert.Equal(t, tt.wantFull, l.UserFullName())
		})
	}
}

func TestLaunch_OpaqueKeysNeedQualifier(t *testing.T) {
	l := NewLaunch(url.Values{"user_id": {"u-1"}, "context_id": {"c-1"}})
	assert.Empty(t, l.UserKey())
	assert.Empty(t, l.CourseKey())

	l = NewLaunch(url.Values{"user_id": {"u-1"}, "oauth_consumer_key": {"k"}})
	assert.Equal(t, "k:user_id:u-1", l.UserKey())
	assert.Empty(t, l.ResourceKey())
}

func TestLaunch_CourseNameFallback(t *testing.T) {
	assert.Equal(t, "L", NewLaunch(url.Values{"context_label": {"L"}, "context_id": {"1"}}).CourseName())
	assert.Equal(t, "1", NewLaunch(url.Values{"context_id": {"1"}}).CourseName())
	assert.Empty(t, NewLaunch(url.Values{}).CourseName())
}

func TestLaunch_UserImage(t *testing.T) {
	assert.Equal(t, "https://img/x.png", NewLaunch(url.Values{"user_image": {"https://img/x.png"}}).UserImage())
	assert.Empty(t, NewLaunch(url.Values{}).UserImage())

	// gravatar ids hash the lower-cased email
	upper := NewLaunch(url.Values{"lis_person_contact_email_primary": {"A@B.C"}}).UserImage()
	lower := NewLaunch(url.Values{"lis_person_contact_email_primary": {"a@b.c"}}).UserImage()
	assert.Equal(t, lower, upper)
	assert.Contains(t, upper, "&size=40")
}

func TestLaunch_Roles(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		want       []string
		instructor bool
	}{
		{"comma list", []string{"Learner,Instructor"}, []string{"learner", "instructor"}, true},
		{"repeated param", []string{"Learner", "urn:lti:role:ims/lis/Administrator"}, []string{"learner", "urn:lti:role:ims/lis/administrator"}, true},
		{"learner only", []string{"Learner"}, []string{"learner"}, false},
		{"no roles", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{}
			if tt.roles != nil {
				params["roles"] = tt.roles
			}
			l := NewLaunch(params)
			assert.Equal(t, tt.want, l.Roles())
			assert.Equal(t, tt.instructor, l.IsInstructor())
		})
	}
}
