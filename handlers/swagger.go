package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>SkillBridge API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": {
    "title": "SkillBridge API",
    "version": "v1.0.0"
  },
  "components": {
    "securitySchemes": {
      "bearerAuth": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      }
    }
  },
  "paths": {
    "/api/Authentication/signup": {
      "post": {
        "summary": "Create an account",
        "responses": {
          "201": {
            "description": "tokens and user"
          },
          "400": {
            "description": "validation failed"
          },
          "409": {
            "description": "email already registered"
          }
        },
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "name": {
                    "type": "string"
                  },
                  "email": {
                    "type": "string"
                  },
                  "password": {
                    "type": "string"
                  },
                  "role": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Authentication/login": {
      "post": {
        "summary": "Log in with email and password",
        "responses": {
          "200": {
            "description": "tokens and user"
          },
          "401": {
            "description": "invalid credentials"
          }
        },
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "email": {
                    "type": "string"
                  },
                  "password": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Authentication/refresh": {
      "post": {
        "summary": "Rotate refresh token",
        "responses": {
          "200": {
            "description": "new tokens"
          },
          "401": {
            "description": "invalid refresh token"
          }
        },
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "refreshToken": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Authentication/logout": {
      "post": {
        "summary": "Log out and revoke tokens",
        "responses": {
          "200": {
            "description": "logged out"
          }
        },
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "refreshToken": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Authentication/me": {
      "get": {
        "summary": "Current user",
        "responses": {
          "200": {
            "description": "user"
          },
          "401": {
            "description": "unauthorized"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ]
      }
    },
    "/api/User/profile": {
      "get": {
        "summary": "Own profile",
        "responses": {
          "200": {
            "description": "user with role profile"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ]
      },
      "put": {
        "summary": "Update name and bio",
        "responses": {
          "200": {
            "description": "user"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "name": {
                    "type": "string"
                  },
                  "bio": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/User/student": {
      "put": {
        "summary": "Update student profile",
        "responses": {
          "200": {
            "description": "student profile"
          },
          "403": {
            "description": "not a student"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "institution": {
                    "type": "string"
                  },
                  "course": {
                    "type": "string"
                  },
                  "yearOfStudy": {
                    "type": "integer"
                  },
                  "interests": {
                    "type": "array"
                  },
                  "skills": {
                    "type": "array"
                  },
                  "github": {
                    "type": "string"
                  },
                  "linkedin": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/User/mentor": {
      "put": {
        "summary": "Update mentor profile",
        "responses": {
          "200": {
            "description": "mentor profile"
          },
          "403": {
            "description": "not a mentor"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "expertise": {
                    "type": "array"
                  },
                  "experienceYears": {
                    "type": "integer"
                  },
                  "company": {
                    "type": "string"
                  },
                  "designation": {
                    "type": "string"
                  },
                  "availability": {
                    "type": "string"
                  },
                  "linkedin": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/User/avatar": {
      "post": {
        "summary": "Upload avatar",
        "responses": {
          "200": {
            "description": "user"
          },
          "400": {
            "description": "invalid file"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "properties": {
                  "file": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/User/{id}": {
      "get": {
        "summary": "Public profile",
        "responses": {
          "200": {
            "description": "user with role profile"
          },
          "404": {
            "description": "not found"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Mentor": {
      "get": {
        "summary": "List mentors",
        "responses": {
          "200": {
            "description": "page of mentors"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "q",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "expertise",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "minExperience",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "sort",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "page",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Mentor/{id}": {
      "get": {
        "summary": "Mentor profile by user id",
        "responses": {
          "200": {
            "description": "mentor"
          },
          "404": {
            "description": "not found"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Mentor/requests": {
      "post": {
        "summary": "Request mentorship",
        "responses": {
          "201": {
            "description": "request"
          },
          "409": {
            "description": "pending request exists"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "mentorId": {
                    "type": "string"
                  },
                  "topic": {
                    "type": "string"
                  },
                  "message": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Mentor/requests/incoming": {
      "get": {
        "summary": "Requests addressed to the mentor",
        "responses": {
          "200": {
            "description": "requests"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "status",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Mentor/requests/outgoing": {
      "get": {
        "summary": "Requests sent by the student",
        "responses": {
          "200": {
            "description": "requests"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "status",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Mentor/requests/{id}": {
      "patch": {
        "summary": "Accept or reject a request",
        "responses": {
          "200": {
            "description": "request"
          },
          "409": {
            "description": "not pending"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "status": {
                    "type": "string"
                  },
                  "response": {
                    "type": "string"
                  }
                }
              }
            }
          }
        },
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "delete": {
        "summary": "Cancel a pending request",
        "responses": {
          "204": {
            "description": "deleted"
          },
          "409": {
            "description": "not pending"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Collaboration/projects": {
      "get": {
        "summary": "List projects",
        "responses": {
          "200": {
            "description": "page of projects"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "q",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "skill",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "status",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "owner",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "sort",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "page",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "post": {
        "summary": "Create project",
        "responses": {
          "201": {
            "description": "project"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "title": {
                    "type": "string"
                  },
                  "description": {
                    "type": "string"
                  },
                  "teamSize": {
                    "type": "integer"
                  },
                  "requiredSkills": {
                    "type": "array"
                  },
                  "status": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Collaboration/projects/mine": {
      "get": {
        "summary": "Projects owned or joined",
        "responses": {
          "200": {
            "description": "page of projects"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "page",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Collaboration/projects/{id}": {
      "get": {
        "summary": "Get project",
        "responses": {
          "200": {
            "description": "project"
          },
          "404": {
            "description": "not found"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "put": {
        "summary": "Update project",
        "responses": {
          "200": {
            "description": "project"
          },
          "403": {
            "description": "not the owner"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "title": {
                    "type": "string"
                  },
                  "description": {
                    "type": "string"
                  },
                  "teamSize": {
                    "type": "integer"
                  },
                  "requiredSkills": {
                    "type": "array"
                  },
                  "status": {
                    "type": "string"
                  }
                }
              }
            }
          }
        },
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "delete": {
        "summary": "Delete project",
        "responses": {
          "204": {
            "description": "deleted"
          },
          "403": {
            "description": "not the owner"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Collaboration/projects/{id}/join": {
      "post": {
        "summary": "Join project",
        "responses": {
          "200": {
            "description": "project"
          },
          "409": {
            "description": "member already, full or completed"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Collaboration/projects/{id}/leave": {
      "post": {
        "summary": "Leave project",
        "responses": {
          "200": {
            "description": "project"
          },
          "409": {
            "description": "owner cannot leave"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Collaboration/projects/{id}/members/{userId}": {
      "delete": {
        "summary": "Remove member",
        "responses": {
          "200": {
            "description": "project"
          },
          "403": {
            "description": "not the owner"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "userId",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Skill-Exchange/skills": {
      "get": {
        "summary": "List skills",
        "responses": {
          "200": {
            "description": "page of skills"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "q",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "category",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "level",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "instructor",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "sort",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "page",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "post": {
        "summary": "Create skill",
        "responses": {
          "201": {
            "description": "skill"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "title": {
                    "type": "string"
                  },
                  "description": {
                    "type": "string"
                  },
                  "category": {
                    "type": "string"
                  },
                  "level": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Skill-Exchange/skills/enrolled": {
      "get": {
        "summary": "Skills the caller is enrolled in",
        "responses": {
          "200": {
            "description": "page of skills"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "page",
            "in": "query",
            "schema": {
              "type": "string"
            }
          },
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Skill-Exchange/skills/{id}": {
      "get": {
        "summary": "Get skill",
        "responses": {
          "200": {
            "description": "skill"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "put": {
        "summary": "Update skill",
        "responses": {
          "200": {
            "description": "skill"
          },
          "403": {
            "description": "not the instructor"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "title": {
                    "type": "string"
                  },
                  "description": {
                    "type": "string"
                  },
                  "category": {
                    "type": "string"
                  },
                  "level": {
                    "type": "string"
                  }
                }
              }
            }
          }
        },
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "delete": {
        "summary": "Delete skill",
        "responses": {
          "204": {
            "description": "deleted"
          },
          "403": {
            "description": "not the instructor"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Skill-Exchange/skills/{id}/enroll": {
      "post": {
        "summary": "Enroll",
        "responses": {
          "200": {
            "description": "skill"
          },
          "409": {
            "description": "already enrolled"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      },
      "delete": {
        "summary": "Unenroll",
        "responses": {
          "200": {
            "description": "skill"
          },
          "404": {
            "description": "not enrolled"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Skill-Exchange/skills/{id}/reviews": {
      "post": {
        "summary": "Review skill",
        "responses": {
          "201": {
            "description": "skill"
          },
          "403": {
            "description": "not enrolled"
          },
          "409": {
            "description": "already reviewed"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "rating": {
                    "type": "integer"
                  },
                  "comment": {
                    "type": "string"
                  }
                }
              }
            }
          }
        },
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Certificate": {
      "get": {
        "summary": "Own certificates",
        "responses": {
          "200": {
            "description": "certificates"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ]
      },
      "post": {
        "summary": "Upload certificate",
        "responses": {
          "201": {
            "description": "certificate"
          },
          "400": {
            "description": "invalid file"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "requestBody": {
          "content": {
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "properties": {
                  "file": {
                    "type": "string"
                  },
                  "title": {
                    "type": "string"
                  },
                  "issuer": {
                    "type": "string"
                  },
                  "issuedAt": {
                    "type": "string"
                  }
                }
              }
            }
          }
        }
      }
    },
    "/api/Certificate/user/{userId}": {
      "get": {
        "summary": "Certificates of a user",
        "responses": {
          "200": {
            "description": "certificates"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "userId",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Certificate/{id}/download": {
      "get": {
        "summary": "Presigned download URL",
        "responses": {
          "200": {
            "description": "url and expiry"
          },
          "403": {
            "description": "not the owner"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/api/Certificate/{id}": {
      "delete": {
        "summary": "Delete certificate",
        "responses": {
          "204": {
            "description": "deleted"
          },
          "403": {
            "description": "not the owner"
          }
        },
        "security": [
          {
            "bearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "schema": {
              "type": "string"
            }
          }
        ]
      }
    },
    "/health": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {
            "description": "healthy"
          }
        }
      }
    },
    "/ready": {
      "get": {
        "summary": "Readiness check",
        "responses": {
          "200": {
            "description": "ready"
          },
          "503": {
            "description": "not ready"
          }
        }
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "responses": {
          "200": {
            "description": "metrics"
          }
        }
      }
    }
  }
}`
