package front

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/authmw"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/session"
)

const (
	requestIDKey = "request_id"
	sessionKey   = "pms.session"
	clientKey    = "pms.client"
	userKey      = "pms.user"
)

// requestID tags every request with an id, echoes it in X-Request-Id and
// hands it to the backend client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-Id")
		if strings.TrimSpace(rid) == "" {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Request = c.Request.WithContext(apiclient.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set("X-Request-Id", rid)

		start := time.Now()
		c.Next()

		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

func storeKey(sid string) string {
	return session.DefaultKey + ":" + sid
}

// requireSession loads the browser's session from the store and attaches a
// backend client carrying its token.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			unauthorized(c, "not signed in")
			return
		}

		sess := session.New(s.store, storeKey(sid))
		if err := sess.Load(c.Request.Context()); err != nil {
			log.Printf("failed to load session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !sess.IsAuthenticated() {
			s.signOut(c, sess)
			unauthorized(c, "session expired")
			return
		}

		if s.verifier != nil {
			claims, err := s.verifier.Verify(sess.Token())
			if err != nil {
				log.Printf("failed to verify session token: %v", err)
				s.signOut(c, sess)
				unauthorized(c, "session expired")
				return
			}
			authmw.SetClaims(c, claims)
		}

		c.Set(sessionKey, sess)
		c.Set(clientKey, s.client(sess))
		c.Next()
	}
}

// requireAdmin lets through holders of the global admin role.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := authmw.ClaimsFrom(c); ok && claims.HasAnyRole(models.GlobalRoleAdmin) {
			c.Next()
			return
		}

		me, ok := s.currentUser(c)
		if !ok {
			return
		}
		if !me.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    msg,
		"redirect": loginRedirect,
	})
}

// signOut clears the stored token and the session cookie.
func (s *Server) signOut(c *gin.Context, sess *session.Session) {
	if sess != nil {
		if err := sess.Clear(c.Request.Context()); err != nil {
			log.Printf("failed to clear session: %v", err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

func clientFrom(c *gin.Context) *apiclient.Client {
	return c.MustGet(clientKey).(*apiclient.Client)
}

func sessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)

	return sess
}

// currentUser fetches the signed-in user once per request. On failure the
// response is already written.
func (s *Server) currentUser(c *gin.Context) (models.User, bool) {
	if v, ok := c.Get(userKey); ok {
		return v.(models.User), true
	}

	me, err := clientFrom(c).Users.Me(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return models.User{}, false
	}
	c.Set(userKey, me)

	return me, true
}
