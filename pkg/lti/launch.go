package lti

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Parameter name prefixes defined by LTI 1.x. Order matters: the first
// matching prefix claims the parameter.
const (
	PrefixOAuth                = "oauth_"
	PrefixLTI                  = "lti_"
	PrefixContext              = "context_"
	PrefixLaunchPresentation   = "launch_presentation_"
	PrefixLISCourseSection     = "lis_course_section_"
	PrefixLISCourseOffering    = "lis_course_offering_"
	PrefixLISOutcome           = "lis_outcome_"
	PrefixLISPerson            = "lis_person_"
	PrefixLISResult            = "lis_result_"
	PrefixResourceLink         = "resource_link_"
	PrefixToolConsumerInfo     = "tool_consumer_info_"
	PrefixToolConsumerInstance = "tool_consumer_instance_"
	PrefixUser                 = "user_"
	PrefixExt                  = "ext_"
	PrefixCustom               = "custom_"
)

var prefixes = []string{
	PrefixOAuth,
	PrefixLTI,
	PrefixContext,
	PrefixLaunchPresentation,
	PrefixLISCourseSection,
	PrefixLISCourseOffering,
	PrefixLISOutcome,
	PrefixLISPerson,
	PrefixLISResult,
	PrefixResourceLink,
	PrefixToolConsumerInfo,
	PrefixToolConsumerInstance,
	PrefixUser,
	PrefixExt,
	PrefixCustom,
}

const gravatarSize = 40

// Launch is a read-only view of launch parameters grouped by prefix.
type Launch struct {
	all     url.Values
	buckets map[string]map[string]string
	roles   []string
}

// NewLaunch groups params by their LTI prefix. Multi-valued parameters keep
// only their first value in the buckets; Params still has them all.
func NewLaunch(params url.Values) *Launch {
	l := &Launch{
		all:     params,
		buckets: make(map[string]map[string]string, len(prefixes)),
	}
	for _, p := range prefixes {
		l.buckets[p] = make(map[string]string)
	}

	for key, values := range params {
		if key == "roles" {
			l.roles = parseRoles(values)
			continue
		}
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				l.buckets[p][strings.TrimPrefix(key, p)] = first(values)
				break
			}
		}
	}
	return l
}

func parseRoles(values []string) []string {
	var roles []string
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}
	for _, v := range values {
		roles = append(roles, strings.ToLower(v))
	}
	return roles
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Param returns the first value of a raw parameter.
func (l *Launch) Param(key string) string {
	return l.all.Get(key)
}

// Params returns every raw parameter.
func (l *Launch) Params() url.Values {
	return l.all
}

// Bucket returns the parameters under prefix with the prefix stripped.
func (l *Launch) Bucket(prefix string) map[string]string {
	return l.buckets[prefix]
}

// BucketValue returns one parameter from a bucket.
func (l *Launch) BucketValue(prefix, key string) string {
	return l.buckets[prefix][key]
}

// Roles returns the lower-cased roles.
func (l *Launch) Roles() []string {
	return l.roles
}

// IsInstructor reports whether any role names an instructor or administrator.
func (l *Launch) IsInstructor() bool {
	for _, role := range l.roles {
		if strings.Contains(role, "instructor") || strings.Contains(role, "administrator") {
			return true
		}
	}
	return false
}

// ConsumerKey returns oauth_consumer_key.
func (l *Launch) ConsumerKey() string {
	return l.BucketValue(PrefixOAuth, "consumer_key")
}

// UserEmail returns lis_person_contact_email_primary. Sakai sends it without
// the second underscore.
func (l *Launch) UserEmail() string {
	if v := l.BucketValue(PrefixLISPerson, "contact_email_primary"); v != "" {
		return v
	}
	return l.BucketValue(PrefixLISPerson, "contact_emailprimary")
}

// UserShortName returns the email, given name, family name or full name,
// whichever is found first.
func (l *Launch) UserShortName() string {
	if v := l.UserEmail(); v != "" {
		return v
	}
	if v := l.BucketValue(PrefixLISPerson, "name_given"); v != "" {
		return v
	}
	if v := l.BucketValue(PrefixLISPerson, "name_family"); v != "" {
		return v
	}
	return l.UserFullName()
}

// UserFullName returns lis_person_name_full, else "given family", else either
// part, else the email.
func (l *Launch) UserFullName() string {
	if v := l.BucketValue(PrefixLISPerson, "name_full"); v != "" {
		return v
	}
	given := l.BucketValue(PrefixLISPerson, "name_given")
	family := l.BucketValue(PrefixLISPerson, "name_family")
	switch {
	case given != "" && family != "":
		return given + " " + family
	case given != "":
		return given
	case family != "":
		return family
	}
	return l.UserEmail()
}

// UserImage returns user_image, or a gravatar URL derived from the email.
func (l *Launch) UserImage() string {
	if v := l.BucketValue(PrefixUser, "image"); v != "" {
		return v
	}
	email := l.UserEmail()
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return fmt.Sprintf("://www.gravatar.com/avatar.php?gravatar_id=%s&size=%d", hex.EncodeToString(sum[:]), gravatarSize)
}

// UserKey returns an opaque id for the user, see opaqueKey.
func (l *Launch) UserKey() string {
	return l.opaqueKey("user_id", l.BucketValue(PrefixUser, "id"))
}

// ResourceKey returns an opaque id for the resource link.
func (l *Launch) ResourceKey() string {
	return l.opaqueKey("resource_link_id", l.BucketValue(PrefixResourceLink, "id"))
}

// CourseKey returns an opaque id for the context (usually a course).
func (l *Launch) CourseKey() string {
	return l.opaqueKey("context_id", l.BucketValue(PrefixContext, "id"))
}

// ResourceTitle returns resource_link_title.
func (l *Launch) ResourceTitle() string {
	return l.BucketValue(PrefixResourceLink, "title")
}

// CourseName returns context_title, context_label or context_id.
func (l *Launch) CourseName() string {
	for _, key := range []string{"title", "label", "id"} {
		if v := l.BucketValue(PrefixContext, key); v != "" {
			return v
		}
	}
	return ""
}

// opaqueKey builds [instance_guid:][consumer_key:]name:id. It is empty
// unless id is set and at least one qualifier exists.
func (l *Launch) opaqueKey(name, id string) string {
	if id == "" {
		return ""
	}
	var parts []string
	if guid := l.BucketValue(PrefixToolConsumerInstance, "guid"); guid != "" {
		parts = append(parts, guid)
	}
	if key := l.ConsumerKey(); key != "" {
		parts = append(parts, key)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(append(parts, name+":"+id), ":")
}
