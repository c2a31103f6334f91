package front

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kyri56xcaesar/pms-workspace/internal/authmw"
	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/session"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

const dateLayout = "2006-01-02"

func (s *Server) handleLogin(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		log.Printf("Failed to bind request: %v", err)
		badRequest(c, "bad data")
		return
	}
	if err := validate.Login(creds); err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.auth.Login(c.Request.Context(), creds)
	s.startSession(c, token, err)
}

func (s *Server) handleRegister(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		log.Printf("Failed to bind request: %v", err)
		badRequest(c, "bad data")
		return
	}
	if err := validate.Register(creds); err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.auth.Register(c.Request.Context(), creds)
	s.startSession(c, token, err)
}

// startSession stores the token the provider handed out under a fresh
// session id and gives the browser that id as a cookie.
func (s *Server) startSession(c *gin.Context, token string, err error) {
	if err != nil {
		if authmw.IsInvalidCredentials(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login or password"})
			return
		}
		log.Printf("failed to sign in: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": genericFailure})
		return
	}

	if s.verifier != nil {
		if _, err := s.verifier.Verify(token); err != nil {
			log.Printf("failed to verify issued token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token rejected"})
			return
		}
	}

	sid := uuid.NewString()
	sess := session.New(s.store, storeKey(sid))
	if err := sess.SetToken(c.Request.Context(), token); err != nil {
		log.Printf("failed to store session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !sess.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token rejected"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sid, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLogout(c *gin.Context) {
	var sess *session.Session
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		sess = session.New(s.store, storeKey(sid))
	}
	s.signOut(c, sess)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redirect": loginRedirect})
}

func (s *Server) userVM(c *gin.Context, u models.User) UserVM {
	vm := UserVM{User: u, IsAdmin: u.IsAdmin()}
	if u.AvatarURL != nil {
		vm.AvatarSrc = clientFrom(c).Storage.ResolveURL(*u.AvatarURL)
	}

	return vm
}

func (s *Server) handleMe(c *gin.Context) {
	me, ok := s.currentUser(c)
	if !ok {
		return
	}

	respondInFormat(c, http.StatusOK, s.userVM(c, me))
}

func (s *Server) handleEditMe(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad data")
		return
	}
	if err := validate.Email(req.Email); err != nil {
		s.fail(c, err)
		return
	}
	me, ok := s.currentUser(c)
	if !ok {
		return
	}

	me.Email = req.Email
	if req.FullName != nil {
		me.FullName = req.FullName
	}
	if req.AvatarURL != nil {
		me.AvatarURL = req.AvatarURL
	}
	if req.SkillIDs != nil {
		me.SkillIDs = req.SkillIDs
	}

	updated, err := clientFrom(c).Users.Edit(c.Request.Context(), me)
	if err != nil {
		s.fail(c, err)
		return
	}
	if updated.ID == 0 {
		// the backend may answer with an empty body
		updated = me
	}

	respondInFormat(c, http.StatusOK, s.userVM(c, updated))
}

func (s *Server) handleMyTasks(c *gin.Context) {
	tasks, err := clientFrom(c).Users.Tasks(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleMyWeek(c *gin.Context) {
	week, ok := weekFrom(c)
	if !ok {
		return
	}
	tasks, err := clientFrom(c).Users.Tasks(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusOK, weekVM(week, tasks))
}

// weekFrom reads ?from=YYYY-MM-DD, defaulting to today.
func weekFrom(c *gin.Context) (filter.Week, bool) {
	anchor := time.Now()
	if from := c.Query("from"); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return filter.Week{}, false
		}
		anchor = t
	}

	return filter.NewWeek(anchor), true
}

func weekVM(week filter.Week, tasks []models.Task) WeekVM {
	slots := week.Place(tasks)
	vm := WeekVM{
		Start: week.Start().Format(dateLayout),
		End:   week.End().Format(dateLayout),
		Days:  make([]DayVM, len(week.Days)),
	}
	for i, d := range week.Days {
		vm.Days[i] = DayVM{Date: d.Format(dateLayout), Tasks: slots[i]}
	}

	return vm
}
