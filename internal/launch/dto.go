package launch

import "github.com/ahwlsqja/lti-tool-provider/pkg/lti"

// LaunchResponse is the summary of an authenticated launch
type LaunchResponse struct {
	ConsumerKey   string            `json:"consumer_key" example:"moodle-prod"`
	UserKey       string            `json:"user_key,omitempty" example:"moodle-prod:user_id:14312"`
	UserShortName string            `json:"user_short_name,omitempty" example:"jdoe"`
	UserFullName  string            `json:"user_full_name,omitempty" example:"Jane Doe"`
	UserEmail     string            `json:"user_email,omitempty" example:"jane.doe@example.edu"`
	UserImage     string            `json:"user_image,omitempty"`
	CourseKey     string            `json:"course_key,omitempty" example:"moodle-prod:context_id:987654321"`
	CourseName    string            `json:"course_name,omitempty" example:"Intro to Go"`
	ResourceKey   string            `json:"resource_key,omitempty" example:"moodle-prod:resource_link_id:ZYXWVUT9"`
	ResourceTitle string            `json:"resource_title,omitempty" example:"Week 1 quiz"`
	Roles         []string          `json:"roles"`
	IsInstructor  bool              `json:"is_instructor" example:"false"`
	Custom        map[string]string `json:"custom,omitempty"`
}

// ToLaunchResponse converts a validated launch to its API representation
func ToLaunchResponse(l *lti.Launch) LaunchResponse {
	roles := l.Roles()
	if roles == nil {
		roles = []string{}
	}

	resp := LaunchResponse{
		ConsumerKey:   l.ConsumerKey(),
		UserKey:       l.UserKey(),
		UserShortName: l.UserShortName(),
		UserFullName:  l.UserFullName(),
		UserEmail:     l.UserEmail(),
		UserImage:     l.UserImage(),
		CourseKey:     l.CourseKey(),
		CourseName:    l.CourseName(),
		ResourceKey:   l.ResourceKey(),
		ResourceTitle: l.ResourceTitle(),
		Roles:         roles,
		IsInstructor:  l.IsInstructor(),
	}
	if custom := l.Bucket(lti.PrefixCustom); len(custom) > 0 {
		resp.Custom = custom
	}
	return resp
}
