package api

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supportedLocales = []language.Tag{language.English, language.Vietnamese}

var localeMatcher = language.NewMatcher(supportedLocales)

// Message keys are the English text.
const (
	msgMovieNotFound         = "Movie not found"
	msgFavoriteNotFound      = "Movie not found in favorites"
	msgAlreadyFavorited      = "Movie is already in favorites"
	msgImdbTaken             = "A movie with this IMDb id already exists"
	msgEmailTaken            = "The email has already been taken"
	msgInvalidData           = "The given data was invalid"
	msgInvalidPayload        = "Invalid request payload"
	msgInvalidCredentials    = "Invalid email or password"
	msgUnauthenticated       = "Unauthenticated"
	msgPasswordChange        = "Password change required"
	msgPasswordChangeDetail  = "You must change your password before continuing"
	msgServerError           = "Something went wrong, please try again later"
	msgNotFound              = "Resource not found"
	msgMovieCreated          = "Movie created successfully"
	msgMovieUpdated          = "Movie updated successfully"
	msgMovieDeleted          = "Movie deleted successfully"
	msgFavoriteAdded         = "Movie added to favorites"
	msgFavoriteRemoved       = "Movie removed from favorites"
	msgLoggedOut             = "Logged out successfully"
	msgPasswordChanged       = "Password changed successfully"
	msgProfileUpdated        = "Profile updated successfully"
	msgResetSent             = "If that email is registered, a temporary password has been sent"
	msgEmailVerified         = "Email verified successfully"
	msgVerificationSent      = "Verification link sent"
	msgAlreadyVerified       = "Email already verified"
	msgInvalidVerification   = "Invalid or expired verification link"
	msgRegistered            = "Registration successful"
	msgLoggedIn              = "Login successful"
	msgUserNotFound          = "User not found"
	msgInvalidMovieID        = "Invalid movie id"
	msgVerificationTokenMiss = "The token field is required"
)

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	vi := map[string]string{
		msgMovieNotFound:         "Không tìm thấy phim",
		msgFavoriteNotFound:      "Không tìm thấy phim trong danh sách yêu thích",
		msgAlreadyFavorited:      "Phim đã có trong danh sách yêu thích",
		msgImdbTaken:             "Đã tồn tại phim với mã IMDb này",
		msgEmailTaken:            "Email đã được sử dụng",
		msgInvalidData:           "Dữ liệu không hợp lệ",
		msgInvalidPayload:        "Dữ liệu yêu cầu không hợp lệ",
		msgInvalidCredentials:    "Email hoặc mật khẩu không đúng",
		msgUnauthenticated:       "Chưa xác thực",
		msgPasswordChange:        "Yêu cầu đổi mật khẩu",
		msgPasswordChangeDetail:  "Bạn phải đổi mật khẩu trước khi tiếp tục",
		msgServerError:           "Đã xảy ra lỗi, vui lòng thử lại sau",
		msgNotFound:              "Không tìm thấy tài nguyên",
		msgMovieCreated:          "Đã tạo phim thành công",
		msgMovieUpdated:          "Đã cập nhật phim thành công",
		msgMovieDeleted:          "Đã xóa phim thành công",
		msgFavoriteAdded:         "Đã thêm phim vào danh sách yêu thích",
		msgFavoriteRemoved:       "Đã xóa phim khỏi danh sách yêu thích",
		msgLoggedOut:             "Đăng xuất thành công",
		msgPasswordChanged:       "Đổi mật khẩu thành công",
		msgProfileUpdated:        "Cập nhật hồ sơ thành công",
		msgResetSent:             "Nếu email đã được đăng ký, mật khẩu tạm thời đã được gửi",
		msgEmailVerified:         "Xác minh email thành công",
		msgVerificationSent:      "Đã gửi liên kết xác minh",
		msgAlreadyVerified:       "Email đã được xác minh",
		msgInvalidVerification:   "Liên kết xác minh không hợp lệ hoặc đã hết hạn",
		msgRegistered:            "Đăng ký thành công",
		msgLoggedIn:              "Đăng nhập thành công",
		msgUserNotFound:          "Không tìm thấy người dùng",
		msgInvalidMovieID:        "Mã phim không hợp lệ",
		msgVerificationTokenMiss: "Trường token là bắt buộc",
	}
	for key, text := range vi {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Vietnamese, key, text); err != nil {
			panic(err)
		}
	}
	return b
}

type localeKey struct{}

// WithLocale returns ctx carrying tag.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFrom returns the negotiated locale, English if none was set.
func LocaleFrom(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return tag
	}
	return language.English
}

// MatchLocale picks a supported locale from an explicit lang value, falling back
// to the Accept-Language header.
func MatchLocale(lang, acceptLanguage string) language.Tag {
	var prefs []language.Tag
	if lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if accepted, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		prefs = append(prefs, accepted...)
	}
	if len(prefs) == 0 {
		return language.English
	}
	_, idx, conf := localeMatcher.Match(prefs...)
	if conf == language.No {
		return language.English
	}
	return supportedLocales[idx]
}

// Locale stores the negotiated language in the request context.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := MatchLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), tag)))
	})
}

// translate renders key in the request's locale.
func translate(ctx context.Context, key string) string {
	return message.NewPrinter(LocaleFrom(ctx), message.Catalog(messages)).Sprintf(key)
}
