package user

type registerInput struct {
	Body registerRequest
}

type registerRequest struct {
	Username string `json:"username" minLength:"3" maxLength:"50" doc:"Account name, letters, digits and underscore"`
	Email    string `json:"email" format:"email" doc:"Contact email"`
	Password string `json:"password" minLength:"8" doc:"Password with upper, lower, digit and special character"`
}

type registerOutput struct {
	Body registerResponse
}

type registerResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type loginInput struct {
	Body loginRequest
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOutput struct {
	Body loginResponse
}

type loginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
